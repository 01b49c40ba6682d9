package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/mdlinkcheck/internal/util/sets"
)

// Header is a document header together with its de-duplicated anchor slug.
type Header struct {
	Text  string
	Slug  string
	Level int
	Line  int // 1-based
}

// AnchorMatch is the outcome of looking up a fragment in an AnchorTable.
type AnchorMatch int

const (
	AnchorMissing AnchorMatch = iota
	AnchorFound
	AnchorCaseMismatch
)

// AnchorTable holds every fragment a document can be linked to: header slugs in
// document order plus explicit HTML anchors.
type AnchorTable struct {
	Headers  []Header
	Explicit []string

	exact  sets.Set[string]
	folded sets.Set[string]
}

var (
	atxRe      = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))?[ \t]*$`)
	atxCloseRe = regexp.MustCompile(`(?:^|[ \t]+)#+$`)
	setextRe   = regexp.MustCompile(`^ {0,3}(=+|-+)[ \t]*$`)
	blockRe    = regexp.MustCompile(`^ {0,3}(?:[-*+][ \t]|\d{1,9}[.)][ \t]|>)`)
	anchorIDRe = regexp.MustCompile(`(?i)<[a-z][a-z0-9]*\s[^>]*?\b(?:name|id)\s*=\s*["']?([^"'\s>]+)`)
)

// BuildSlugTable builds the anchor table of a document from its raw text.
func BuildSlugTable(raw []byte) *AnchorTable {
	return BuildAnchorTable(raw, Mask(raw))
}

// BuildAnchorTable builds the anchor table of a document. Header candidates are
// recognized on masked text so headers inside code blocks and comments are
// ignored; header text is taken from the raw text.
func BuildAnchorTable(raw, masked []byte) *AnchorTable {
	t := &AnchorTable{
		exact:  sets.New[string](),
		folded: sets.New[string](),
	}

	rawLines := splitLines(raw)
	maskedLines := splitLines(masked)

	counts := make(map[string]int)
	for i := range rawLines {
		text, level, ok := headerAt(rawLines, maskedLines, i)
		if !ok {
			continue
		}
		text = cleanHeaderText(text)
		base := Slugify(text)
		if base == "" {
			continue
		}
		slug := base
		if t.exact.Has(slug) {
			n := counts[base]
			for {
				n++
				slug = fmt.Sprintf("%s-%d", base, n)
				if !t.exact.Has(slug) {
					break
				}
			}
			counts[base] = n
		}
		t.add(slug)
		t.Headers = append(t.Headers, Header{Text: text, Slug: slug, Level: level, Line: i + 1})
	}

	for _, m := range anchorIDRe.FindAllSubmatch(masked, -1) {
		id := string(m[1])
		t.Explicit = append(t.Explicit, id)
		t.add(id)
	}
	return t
}

func (t *AnchorTable) add(anchor string) {
	t.exact.Add(anchor)
	t.folded.Add(strings.ToLower(anchor))
}

// Lookup checks a decoded fragment (without the leading '#') against the table.
func (t *AnchorTable) Lookup(anchor string) AnchorMatch {
	if t == nil {
		return AnchorMissing
	}
	if t.exact.Has(anchor) {
		return AnchorFound
	}
	if t.folded.Has(strings.ToLower(anchor)) {
		return AnchorCaseMismatch
	}
	return AnchorMissing
}

// Slugs returns the header slugs in document order.
func (t *AnchorTable) Slugs() []string {
	out := make([]string, 0, len(t.Headers))
	for _, h := range t.Headers {
		out = append(out, h.Slug)
	}
	return out
}

// headerAt reports whether line i is an ATX header or the text line of a
// setext header.
func headerAt(rawLines, maskedLines [][]byte, i int) (string, int, bool) {
	raw := bytes.TrimRight(rawLines[i], "\r")
	masked := bytes.TrimRight(maskedLines[i], "\r")

	if m := atxRe.FindSubmatch(masked); m != nil {
		rm := atxRe.FindSubmatch(raw)
		if rm == nil {
			return "", 0, false
		}
		text := atxCloseRe.ReplaceAll(rm[2], nil)
		return string(bytes.TrimSpace(text)), len(rm[1]), true
	}

	if i+1 >= len(rawLines) {
		return "", 0, false
	}
	under := setextRe.FindSubmatch(bytes.TrimRight(maskedLines[i+1], "\r"))
	if under == nil {
		return "", 0, false
	}
	if len(bytes.TrimSpace(raw)) == 0 || !startsUnmasked(raw, masked) {
		return "", 0, false
	}
	if atxRe.Match(masked) || setextRe.Match(masked) || blockRe.Match(masked) {
		return "", 0, false
	}
	level := 2
	if under[1][0] == '=' {
		level = 1
	}
	return string(bytes.TrimSpace(raw)), level, true
}

// startsUnmasked reports whether the first visible character of a line
// survived masking. Inline code is allowed since headers may start with it.
func startsUnmasked(raw, masked []byte) bool {
	for i, c := range raw {
		if c == ' ' || c == '\t' {
			continue
		}
		return masked[i] == c || c == '`'
	}
	return false
}

// cleanHeaderText drops code span and comment markers but keeps their content.
func cleanHeaderText(text string) string {
	text = strings.ReplaceAll(text, "`", "")
	text = strings.ReplaceAll(text, "<!--", "")
	text = strings.ReplaceAll(text, "-->", "")
	return strings.TrimSpace(text)
}

// Slugify converts header text into an anchor slug: entities resolved,
// lowercased, everything except letters, digits, whitespace, '-' and '_'
// removed, whitespace runs replaced by one hyphen, hyphens trimmed.
func Slugify(text string) string {
	b := util.ResolveEntityNames([]byte(cleanHeaderText(text)))
	b = util.ResolveNumericReferences(b)
	lowered := cases.Lower(language.Und).String(norm.NFC.String(string(b)))

	var sb strings.Builder
	sb.Grow(len(lowered))
	pendingSpace := false
	for _, r := range lowered {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r), r == '-', r == '_':
			if pendingSpace && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingSpace = false
			sb.WriteRune(r)
		}
	}
	return strings.Trim(sb.String(), "-")
}

func splitLines(b []byte) [][]byte {
	return bytes.Split(b, []byte("\n"))
}
