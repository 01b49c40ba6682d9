package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func extract(src string) []Link {
	raw := []byte(src)
	return ExtractLinks(raw, Mask(raw))
}

func TestExtractLinks_InlineLink(t *testing.T) {
	links := extract("See [API](api.md) for details.")
	require.Len(t, links, 1)
	require.Equal(t, LinkKindInline, links[0].Kind)
	require.Equal(t, "api.md", links[0].Target)
	require.Equal(t, "API", links[0].Text)
	require.Equal(t, "[API](api.md)", links[0].Literal)
	require.False(t, links[0].IsImage)
}

func TestExtractLinks_ImageLink(t *testing.T) {
	links := extract("![Diagram](diagram.png)")
	require.Len(t, links, 1)
	require.Equal(t, LinkKindInline, links[0].Kind)
	require.True(t, links[0].IsImage)
	require.Equal(t, "diagram.png", links[0].Target)
	require.Equal(t, "![Diagram](diagram.png)", links[0].Literal)
}

func TestExtractLinks_ImageInsideLink(t *testing.T) {
	links := extract("[![badge](badge.svg)](docs/index.md)")
	require.Len(t, links, 2)
	require.Equal(t, "docs/index.md", links[0].Target)
	require.False(t, links[0].IsImage)
	require.Equal(t, "badge.svg", links[1].Target)
	require.True(t, links[1].IsImage)
}

func TestExtractLinks_AdjacentLinksAreNotMerged(t *testing.T) {
	links := extract("[a](a.md)[b](b.md) and [c](c.md)")
	require.Len(t, links, 3)
	require.Equal(t, "[a](a.md)", links[0].Literal)
	require.Equal(t, "[b](b.md)", links[1].Literal)
	require.Equal(t, "[c](c.md)", links[2].Literal)
}

func TestExtractLinks_ParenthesesInTextAndDestination(t *testing.T) {
	links := extract("[foo (bar)](notes_(draft).md)")
	require.Len(t, links, 1)
	require.Equal(t, "notes_(draft).md", links[0].Target)
	require.Equal(t, "foo (bar)", links[0].Text)
}

func TestExtractLinks_StripsTitles(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "double quoted", src: `[x](guide.md "Guide")`, want: "guide.md"},
		{name: "single quoted", src: `[x](guide.md 'Guide')`, want: "guide.md"},
		{name: "parenthesized", src: `[x](guide.md (Guide))`, want: "guide.md"},
		{name: "unquoted label", src: `[x](guide.md#setup Guide)`, want: "guide.md#setup"},
		{name: "angle brackets", src: `[x](<my guide.md> "Guide")`, want: "my guide.md"},
		{name: "space without label", src: `[x](my guide)`, want: "my guide"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := extract(tt.src)
			require.Len(t, links, 1)
			require.Equal(t, tt.want, links[0].Target)
			require.Equal(t, tt.src, links[0].Literal)
		})
	}
}

func TestExtractLinks_ReferenceLinkUsageAndDefinition(t *testing.T) {
	links := extract("See [API][ref].\n\n[ref]: api.md\n")
	require.Len(t, links, 1)
	require.Equal(t, LinkKindReference, links[0].Kind)
	require.Equal(t, "api.md", links[0].Target)
	require.Equal(t, "[API][ref]", links[0].Literal)
}

func TestExtractLinks_ShorthandAndCollapsedReferences(t *testing.T) {
	links := extract("Read [Setup] and [Setup][] or [unknown].\n\n[setup]: <setup guide.md> \"Setup\"\n")
	require.Len(t, links, 2)
	require.Equal(t, LinkKindShorthandReference, links[0].Kind)
	require.Equal(t, "[Setup]", links[0].Literal)
	require.Equal(t, "setup guide.md", links[0].Target)
	require.Equal(t, LinkKindReference, links[1].Kind)
	require.Equal(t, "[Setup][]", links[1].Literal)
}

func TestExtractLinks_UnusedDefinitionIsReported(t *testing.T) {
	links := extract("Text.\n\n[orphan]: missing.md\n")
	require.Len(t, links, 1)
	require.Equal(t, LinkKindReferenceDefinition, links[0].Kind)
	require.Equal(t, "missing.md", links[0].Target)
	require.Equal(t, "[orphan]: missing.md", links[0].Literal)
}

func TestExtractLinks_OverIndentedDefinitionIsReportable(t *testing.T) {
	links := extract("Use [id] here.\n    [id]: missing.md\n")
	require.Len(t, links, 2)
	require.Equal(t, LinkKindShorthandReference, links[0].Kind)
	require.Equal(t, LinkKindReferenceDefinition, links[1].Kind)
	require.Equal(t, "missing.md", links[1].Target)
}

func TestExtractLinks_DeepBlockquoteDefinitionIsReportable(t *testing.T) {
	links := extract("> > > > [id]: missing.md\n")
	require.Len(t, links, 1)
	require.Equal(t, LinkKindReferenceDefinition, links[0].Kind)
}

func TestExtractLinks_DefinitionAfterWordOrNumber(t *testing.T) {
	links := extract("Note [id]: missing.md\n\nsee [x][id] and [id]\n")
	require.Len(t, links, 2)
	require.Equal(t, LinkKindReference, links[0].Kind)
	require.Equal(t, "[x][id]", links[0].Literal)
	require.Equal(t, "missing.md", links[0].Target)
	require.Equal(t, LinkKindShorthandReference, links[1].Kind)
	require.Equal(t, "missing.md", links[1].Target)

	links = extract("1 [id]: missing.md\n")
	require.Len(t, links, 1)
	require.Equal(t, LinkKindReferenceDefinition, links[0].Kind)
	require.Equal(t, "[id]: missing.md", links[0].Literal)

	links = extract("Über [ü]: missing.md\n")
	require.Len(t, links, 1)
	require.Equal(t, "missing.md", links[0].Target)
}

func TestExtractLinks_DefinitionAfterLinkIsNotADefinition(t *testing.T) {
	links := extract("[a](b.md) [id]: missing.md\n")
	require.Len(t, links, 1)
	require.Equal(t, LinkKindInline, links[0].Kind)
}

func TestExtractLinks_IgnoresFootnotes(t *testing.T) {
	links := extract("Claim[^1].\n\n[^1]: Source text.\n")
	require.Empty(t, links)
}

func TestExtractLinks_AnchorTagQuoteVariants(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		quote QuoteStyle
	}{
		{name: "double", src: `<a href="guide.md">Guide</a>`, quote: QuoteDouble},
		{name: "single", src: `<a href='guide.md'>Guide</a>`, quote: QuoteSingle},
		{name: "smart", src: "<a href=”guide.md”>Guide</a>", quote: QuoteSmart},
		{name: "unquoted", src: `<a href=guide.md>Guide</a>`, quote: QuoteBare},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := extract("Before " + tt.src + " after")
			require.Len(t, links, 1)
			require.Equal(t, LinkKindAnchorTag, links[0].Kind)
			require.Equal(t, tt.quote, links[0].Quote)
			require.Equal(t, "guide.md", links[0].Target)
			require.Equal(t, "Guide", links[0].Text)
			require.Equal(t, tt.src, links[0].Literal)
		})
	}
}

func TestExtractLinks_ImageTag(t *testing.T) {
	links := extract(`<img alt="logo" src="img/logo.png" />`)
	require.Len(t, links, 1)
	require.True(t, links[0].IsImage)
	require.Equal(t, "img/logo.png", links[0].Target)
}

func TestExtractLinks_SkipsInlineCodeAndCodeBlocks(t *testing.T) {
	src := "" +
		"Inline code: `[Link](./ignored-inline.md)`\n" +
		"\n" +
		"```\n" +
		"[Link](./ignored-fence.md)\n" +
		"```\n" +
		"\n" +
		"<!-- [Link](./ignored-comment.md) -->\n" +
		"Real: [OK](./real.md)\n"

	links := extract(src)
	require.Len(t, links, 1)
	require.Equal(t, "./real.md", links[0].Target)
}

func TestExtractLinks_LiteralMatchesRawOffsets(t *testing.T) {
	src := "# Title\n\nText `code` [a](a.md) <a href=\"b.md\">b</a>\n[c][d]\n\n[d]: c.md\n"
	for _, l := range extract(src) {
		require.Equal(t, src[l.Start:l.End], l.Literal)
	}
}

func TestExtractLinks_EscapedBracketIsText(t *testing.T) {
	require.Empty(t, extract(`\[not](a link.md`))
}
