package markdown

import (
	"bytes"
	"path"
	"regexp"
	"sort"
	"strings"
)

// ExtractLinks returns every link occurrence in a document, in source order.
//
// Structure is recognized on the masked text so nothing inside code or comments
// is matched; literals, targets and display text are sliced from raw at the same
// offsets. raw and masked must have equal length.
func ExtractLinks(raw, masked []byte) []Link {
	if len(raw) != len(masked) {
		masked = Mask(raw)
	}

	defs := collectDefinitions(raw, masked)
	links := extractBracketLinks(raw, masked, defs)
	links = append(links, extractTagLinks(raw, masked)...)
	links = append(links, defs.reportable()...)

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Start < links[j].Start
	})
	return links
}

// definition is a `[label]: target` line.
type definition struct {
	label      string
	target     string
	literal    string
	start, end int
	used       bool
	reportable bool // prefixed by too much indentation or quoting
}

type definitions struct {
	byLabel map[string]*definition
	all     []*definition
}

func (d *definitions) lookup(label string) *definition {
	return d.byLabel[normalizeLabel(label)]
}

// reportable returns definitions that are checked on their own: those with an
// unusual prefix, and real definitions no link refers to.
func (d *definitions) reportable() []Link {
	var out []Link
	for _, def := range d.all {
		if def.used && !def.reportable {
			continue
		}
		out = append(out, Link{
			Kind:    LinkKindReferenceDefinition,
			Literal: def.literal,
			Target:  def.target,
			Text:    def.label,
			Start:   def.start,
			End:     def.end,
		})
	}
	return out
}

var (
	// Words, numbers, quoting and a list marker may precede a definition.
	defPrefixRe = regexp.MustCompile(`^[\p{L}\p{N} \t>]*(?:(?:[-*+]|\d{1,9}[.)])[ \t]+)?$`)
	titleRe     = regexp.MustCompile(`^(.*?)(?:[ \t]+("[^"]*"|'[^']*'|\([^)]*\)))[ \t]*$`)
)

const maxBenignQuotes = 3

func collectDefinitions(raw, masked []byte) *definitions {
	defs := &definitions{byLabel: make(map[string]*definition)}

	offset := 0
	for _, line := range splitLines(masked) {
		lineStart := offset
		offset += len(line) + 1

		open := bytes.IndexByte(line, '[')
		if open < 0 || !defPrefixRe.Match(line[:open]) {
			continue
		}
		closeRel := bytes.IndexAny(line[open+1:], "[]")
		if closeRel < 0 || line[open+1+closeRel] != ']' {
			continue
		}
		closeIdx := open + 1 + closeRel
		if closeIdx+1 >= len(line) || line[closeIdx+1] != ':' {
			continue
		}
		label := string(raw[lineStart+open+1 : lineStart+closeIdx])
		if strings.TrimSpace(label) == "" || strings.HasPrefix(label, "^") {
			continue
		}

		rest := string(raw[lineStart+closeIdx+2 : lineStart+len(line)])
		target := definitionTarget(rest)
		if target == "" {
			continue
		}

		prefix := line[:open]
		def := &definition{
			label:      label,
			target:     target,
			literal:    strings.TrimRight(string(raw[lineStart+open:lineStart+len(line)]), " \t\r"),
			start:      lineStart + open,
			reportable: indentWidth(prefix) >= 4 || bytes.Count(prefix, []byte(">")) > maxBenignQuotes,
		}
		def.end = def.start + len(def.literal)

		defs.all = append(defs.all, def)
		key := normalizeLabel(label)
		if _, exists := defs.byLabel[key]; !exists {
			defs.byLabel[key] = def
		}
	}
	return defs
}

func definitionTarget(rest string) string {
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "<") {
		if end := strings.IndexByte(rest, '>'); end > 0 {
			return rest[1:end]
		}
	}
	if m := titleRe.FindStringSubmatch(rest); m != nil {
		rest = m[1]
	}
	return strings.TrimSpace(rest)
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

func extractBracketLinks(raw, masked []byte, defs *definitions) []Link {
	var links []Link
	skip := make(map[int]bool)

	for i := 0; i < len(masked); i++ {
		if masked[i] != '[' || skip[i] || isEscaped(masked, i) {
			continue
		}
		closeIdx := matchBracket(masked, i)
		if closeIdx < 0 {
			continue
		}

		start := i
		image := i > 0 && masked[i-1] == '!' && !isEscaped(masked, i-1)
		if image {
			start = i - 1
		}
		text := string(raw[i+1 : closeIdx])
		next := closeIdx + 1

		switch {
		case next < len(masked) && masked[next] == '(':
			end, target, ok := parseDestination(raw, masked, next)
			if !ok {
				continue
			}
			for j := next; j < end; j++ {
				if masked[j] == '[' {
					skip[j] = true
				}
			}
			links = append(links, Link{
				Kind:    LinkKindInline,
				IsImage: image,
				Literal: string(raw[start : end+1]),
				Target:  target,
				Text:    text,
				Start:   start,
				End:     end + 1,
			})

		case next < len(masked) && masked[next] == '[':
			idClose := matchBracket(masked, next)
			if idClose < 0 {
				continue
			}
			skip[next] = true
			label := string(raw[next+1 : idClose])
			if strings.TrimSpace(label) == "" {
				label = text
			}
			def := defs.lookup(label)
			if def == nil {
				continue
			}
			def.used = true
			links = append(links, Link{
				Kind:    LinkKindReference,
				IsImage: image,
				Literal: string(raw[start : idClose+1]),
				Target:  def.target,
				Text:    text,
				Start:   start,
				End:     idClose + 1,
			})

		case next < len(masked) && masked[next] == ':':
			// definition line

		default:
			def := defs.lookup(text)
			if def == nil {
				continue
			}
			def.used = true
			links = append(links, Link{
				Kind:    LinkKindShorthandReference,
				IsImage: image,
				Literal: string(raw[start : closeIdx+1]),
				Target:  def.target,
				Text:    text,
				Start:   start,
				End:     closeIdx + 1,
			})
		}
	}
	return links
}

// matchBracket returns the index of the ']' closing the '[' at open, honoring
// nesting and escapes. The search stops at a blank line.
func matchBracket(b []byte, open int) int {
	depth := 0
	for i := open; i < len(b); i++ {
		switch b[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		case '\n':
			if isBlankLineAt(b, i+1) {
				return -1
			}
		}
	}
	return -1
}

func isBlankLineAt(b []byte, i int) bool {
	for ; i < len(b); i++ {
		switch b[i] {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

// parseDestination parses "(target "title")" starting at the '(' at open. It
// returns the index of the closing ')' and the target without its title.
func parseDestination(raw, masked []byte, open int) (int, string, bool) {
	i := open + 1
	for i < len(masked) && (masked[i] == ' ' || masked[i] == '\t') {
		i++
	}

	if i < len(masked) && masked[i] == '<' {
		gt := bytes.IndexByte(masked[i:], '>')
		nl := bytes.IndexByte(masked[i:], '\n')
		if gt > 0 && (nl < 0 || gt < nl) {
			target := string(raw[i+1 : i+gt])
			end := indexByteOnLine(masked, i+gt+1, ')')
			if end < 0 {
				return 0, "", false
			}
			return end, target, true
		}
	}

	depth := 0
	var quote byte
	for j := i; j < len(masked); j++ {
		c := masked[j]
		if quote != 0 {
			switch c {
			case quote:
				quote = 0
			case '\n':
				return 0, "", false
			}
			continue
		}
		switch c {
		case '\\':
			j++
		case '"', '\'':
			if j > i && (masked[j-1] == ' ' || masked[j-1] == '\t') {
				quote = c
			}
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return j, splitTitle(string(raw[i:j])), true
			}
			depth--
		case '\n':
			return 0, "", false
		}
	}
	return 0, "", false
}

func indexByteOnLine(b []byte, from int, c byte) int {
	for i := from; i < len(b); i++ {
		switch b[i] {
		case c:
			return i
		case '\n':
			return -1
		}
	}
	return -1
}

// splitTitle separates a destination from a trailing quoted or parenthesized
// title. An unquoted label is split off only when the first token already is a
// complete path, so destinations containing spaces survive.
func splitTitle(content string) string {
	content = strings.TrimSpace(content)
	if m := titleRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	fields := strings.Fields(content)
	if len(fields) > 1 && looksComplete(fields[0]) {
		return fields[0]
	}
	return content
}

func looksComplete(token string) bool {
	if strings.Contains(token, "://") || strings.ContainsAny(token, "#?") || strings.HasSuffix(token, "/") {
		return true
	}
	return path.Ext(token) != ""
}

func isEscaped(b []byte, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && b[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// quoteVariant describes one way of quoting an HTML attribute value.
type quoteVariant struct {
	style  QuoteStyle
	open   string
	closes []string
}

var quoteVariants = []quoteVariant{
	{style: QuoteDouble, open: `"`, closes: []string{`"`}},
	{style: QuoteSingle, open: `'`, closes: []string{`'`}},
	{style: QuoteSmart, open: "”", closes: []string{"”", "“", `"`}},
	{style: QuoteSmart, open: "“", closes: []string{"”", "“", `"`}},
}

var tagAttrRe = regexp.MustCompile(`(?i)\b(href|src)\s*=\s*`)

// extractTagLinks finds <a href=…>…</a> and <img src=…> tags.
func extractTagLinks(raw, masked []byte) []Link {
	var links []Link
	for i := 0; i < len(masked); i++ {
		if masked[i] != '<' {
			continue
		}
		rest := masked[i:]
		var image bool
		switch {
		case isTagStart(rest, "a"):
		case isTagStart(rest, "img"):
			image = true
		default:
			continue
		}

		tagEnd := indexTagEnd(masked, i)
		if tagEnd < 0 {
			continue
		}
		tag := raw[i : tagEnd+1]
		attr := "href"
		if image {
			attr = "src"
		}
		target, quote, ok := tagAttribute(tag, attr)
		if !ok {
			continue
		}

		end := tagEnd + 1
		text := ""
		if !image {
			if closeRel := indexFoldASCII(masked[end:], "</a>"); closeRel >= 0 && !bytes.Contains(masked[end:end+closeRel], []byte("\n\n")) {
				text = string(raw[end : end+closeRel])
				end += closeRel + len("</a>")
			}
		}
		links = append(links, Link{
			Kind:    LinkKindAnchorTag,
			Quote:   quote,
			IsImage: image,
			Literal: string(raw[i:end]),
			Target:  target,
			Text:    text,
			Start:   i,
			End:     end,
		})
		i = tagEnd
	}
	return links
}

func indexTagEnd(b []byte, open int) int {
	for i := open + 1; i < len(b); i++ {
		switch b[i] {
		case '>':
			return i
		case '<':
			return -1
		case '\n':
			if isBlankLineAt(b, i+1) {
				return -1
			}
		}
	}
	return -1
}

// tagAttribute returns the value of attr in an HTML tag and how it was quoted.
func tagAttribute(tag []byte, attr string) (string, QuoteStyle, bool) {
	for _, loc := range tagAttrRe.FindAllSubmatchIndex(tag, -1) {
		if !strings.EqualFold(string(tag[loc[2]:loc[3]]), attr) {
			continue
		}
		value := string(tag[loc[1]:])
		for _, v := range quoteVariants {
			if !strings.HasPrefix(value, v.open) {
				continue
			}
			body := value[len(v.open):]
			end := -1
			for _, c := range v.closes {
				if idx := strings.Index(body, c); idx >= 0 && (end < 0 || idx < end) {
					end = idx
				}
			}
			if end < 0 {
				return "", QuoteNone, false
			}
			return body[:end], v.style, true
		}
		end := strings.IndexAny(value, " \t\r\n>")
		if end < 0 {
			end = len(value)
		}
		value = strings.TrimSuffix(value[:end], "/")
		if value == "" {
			return "", QuoteNone, false
		}
		return value, QuoteBare, true
	}
	return "", QuoteNone, false
}
