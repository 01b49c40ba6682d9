package markdown

import (
	"bytes"
	"regexp"
)

type maskState int

const (
	stateNormal maskState = iota
	stateFenced
	stateHTMLPre
	stateHTMLCode
	stateHTMLComment
	stateProcessingInstruction
	stateInlineCode
)

// commentLineRe matches the `[//]: #` convention for hiding a line from renderers.
var commentLineRe = regexp.MustCompile(`^[ \t]*\[//\]:[ \t]*#`)

type maskScanner struct {
	src   []byte
	out   []byte
	state maskState

	fence     []byte // marker of the open fenced block
	run       int    // backtick run length of the open code span
	indented  bool
	prevBlank bool
}

// Mask returns a copy of src in which fenced and indented code blocks, inline
// code spans, <pre> and <code> elements, HTML comments, processing
// instructions and `[//]: #` comment lines are replaced by spaces.
//
// Line breaks are kept so the result has the same length and line structure as
// src. Unterminated regions extend to the end of the document.
func Mask(src []byte) []byte {
	s := &maskScanner{
		src:       src,
		out:       append([]byte(nil), src...),
		prevBlank: true,
	}

	for start := 0; start < len(src); {
		end := bytes.IndexByte(src[start:], '\n')
		if end < 0 {
			end = len(src)
		} else {
			end += start
		}
		s.scanLine(start, end)
		start = end + 1
	}
	return s.out
}

// MaskRange blanks out[from:to] in place, keeping line breaks.
func MaskRange(out []byte, from, to int) {
	for i := from; i < to && i < len(out); i++ {
		if out[i] != '\n' && out[i] != '\r' {
			out[i] = ' '
		}
	}
}

func (s *maskScanner) blank(from, to int) {
	MaskRange(s.out, from, to)
}

func (s *maskScanner) scanLine(start, end int) {
	line := s.src[start:end]
	isBlank := len(bytes.TrimSpace(line)) == 0

	switch s.state {
	case stateFenced:
		s.blank(start, end)
		if isClosingFence(line, s.fence) {
			s.state = stateNormal
			s.fence = nil
		}
		s.prevBlank = isBlank
		return

	case stateNormal:
		if s.indented {
			if isBlank {
				s.prevBlank = true
				return
			}
			if indentWidth(line) >= 4 {
				s.blank(start, end)
				s.prevBlank = false
				return
			}
			s.indented = false
		}

		if marker, ok := openingFence(line); ok {
			s.state = stateFenced
			s.fence = marker
			s.blank(start, end)
			s.prevBlank = false
			return
		}

		if s.prevBlank && !isBlank && indentWidth(line) >= 4 {
			s.indented = true
			s.blank(start, end)
			s.prevBlank = false
			return
		}

		if commentLineRe.Match(line) {
			s.blank(start, end)
			s.prevBlank = false
			return
		}
	}

	s.scanInline(start, end)
	s.prevBlank = isBlank
}

// scanInline walks one line character by character for the states that may
// open and close anywhere inside a line.
func (s *maskScanner) scanInline(start, end int) {
	i := start
	for i < end {
		switch s.state {
		case stateInlineCode:
			j := findBacktickRun(s.src, i, end, s.run)
			if j < 0 {
				s.blank(i, end)
				return
			}
			s.blank(i, j+s.run)
			i = j + s.run
			s.state = stateNormal

		case stateHTMLComment:
			i = s.maskUntil(i, end, "-->")
		case stateProcessingInstruction:
			i = s.maskUntil(i, end, "?>")
		case stateHTMLPre:
			i = s.maskUntil(i, end, "</pre>")
		case stateHTMLCode:
			i = s.maskUntil(i, end, "</code>")

		default:
			c := s.src[i]
			switch {
			case c == '\\' && i+1 < end:
				i += 2
			case c == '`':
				n := runLength(s.src, i, end, '`')
				s.state = stateInlineCode
				s.run = n
				s.blank(i, i+n)
				i += n
			case c == '<':
				i = s.openTag(i, end)
			default:
				i++
			}
		}
	}
}

// openTag switches state when src[i] starts a masked HTML construct.
func (s *maskScanner) openTag(i, end int) int {
	rest := s.src[i:end]
	switch {
	case bytes.HasPrefix(rest, []byte("<!--")):
		s.state = stateHTMLComment
		s.blank(i, i+4)
		return i + 4
	case bytes.HasPrefix(rest, []byte("<?")):
		s.state = stateProcessingInstruction
		s.blank(i, i+2)
		return i + 2
	case isTagStart(rest, "pre"):
		s.state = stateHTMLPre
		s.blank(i, i+4)
		return i + 4
	case isTagStart(rest, "code"):
		s.state = stateHTMLCode
		s.blank(i, i+5)
		return i + 5
	}
	return i + 1
}

// maskUntil blanks from i through the closer (matched case-insensitively) and
// returns the index after it. Without a closer the rest of the line is blanked
// and the current state is kept.
func (s *maskScanner) maskUntil(i, end int, closer string) int {
	j := indexFoldASCII(s.src[i:end], closer)
	if j < 0 {
		s.blank(i, end)
		return end
	}
	stop := i + j + len(closer)
	s.blank(i, stop)
	s.state = stateNormal
	return stop
}

func openingFence(line []byte) ([]byte, bool) {
	trimmed := bytes.TrimLeft(line, " \t")
	if len(trimmed) < 3 {
		return nil, false
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return nil, false
	}
	n := runLength(trimmed, 0, len(trimmed), c)
	if n < 3 {
		return nil, false
	}
	// A backtick fence's info string cannot contain backticks.
	if c == '`' && bytes.IndexByte(trimmed[n:], '`') >= 0 {
		return nil, false
	}
	return trimmed[:n], true
}

func isClosingFence(line, marker []byte) bool {
	trimmed := bytes.TrimSpace(line)
	if len(marker) == 0 || len(trimmed) < len(marker) {
		return false
	}
	for _, b := range trimmed {
		if b != marker[0] {
			return false
		}
	}
	return true
}

func indentWidth(line []byte) int {
	width := 0
	for _, b := range line {
		switch b {
		case ' ':
			width++
		case '\t':
			width += 4 - width%4
		default:
			return width
		}
	}
	return width
}

func runLength(b []byte, i, end int, c byte) int {
	n := 0
	for i+n < end && b[i+n] == c {
		n++
	}
	return n
}

// findBacktickRun returns the index of the next run of exactly n backticks in
// b[from:end], or -1.
func findBacktickRun(b []byte, from, end, n int) int {
	for i := from; i < end; {
		if b[i] != '`' {
			i++
			continue
		}
		run := runLength(b, i, end, '`')
		if run == n {
			return i
		}
		i += run
	}
	return -1
}

// isTagStart reports whether b starts with "<name" followed by '>', '/' or whitespace.
func isTagStart(b []byte, name string) bool {
	if len(b) < len(name)+2 || b[0] != '<' {
		return false
	}
	if !equalFoldASCII(b[1:1+len(name)], name) {
		return false
	}
	switch b[1+len(name)] {
	case '>', '/', ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func equalFoldASCII(b []byte, s string) bool {
	if len(b) != len(s) {
		return false
	}
	for i := range len(s) {
		if lowerASCII(b[i]) != lowerASCII(s[i]) {
			return false
		}
	}
	return true
}

// indexFoldASCII is bytes.Index with ASCII case folding. It never changes byte
// offsets, unlike lowering the whole input.
func indexFoldASCII(b []byte, sub string) int {
	for i := 0; i+len(sub) <= len(b); i++ {
		if equalFoldASCII(b[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}
