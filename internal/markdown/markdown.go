// Package markdown implements the text-level analysis used by the link checker:
// masking of code and comment regions, header anchor slugs, and link extraction.
//
// All functions operate on raw document bytes. Masked text always has the same
// length and line structure as the raw text so offsets found in one are valid in
// the other.
package markdown

// LinkKind identifies the syntactic form a link occurrence was written in.
type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindReference           LinkKind = "reference"
	LinkKindShorthandReference  LinkKind = "shorthand_reference"
	LinkKindAnchorTag           LinkKind = "anchor_tag"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

// QuoteStyle records how the target attribute of an HTML tag was quoted.
type QuoteStyle string

const (
	QuoteNone   QuoteStyle = ""
	QuoteDouble QuoteStyle = "double"
	QuoteSingle QuoteStyle = "single"
	QuoteSmart  QuoteStyle = "smart"
	QuoteBare   QuoteStyle = "unquoted"
)

// Link is a single link occurrence found in a document.
//
// Literal is the exact substring of the raw document between Start and End.
// Target is the destination as written, before any decoding.
type Link struct {
	Kind    LinkKind
	Quote   QuoteStyle
	IsImage bool
	Literal string
	Target  string
	Text    string
	Start   int
	End     int
}
