package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMask_PreservesLengthAndLineBreaks(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"```go\ncode [a](b.md)\n```\n",
		"```\nunterminated\n[a](b.md)",
		"a `span` b\r\nc ``x ` y`` d\r\n",
		"<!-- open\nstill open\n",
		"<?php echo 1; ?>\n<pre>\n[x](y.md)\n</pre>\n",
		"para\n\n    indented\n\n    still\nback\n",
		"[//]: # (hidden)\n",
		"héllo `wörld` ”quote”",
	}
	for _, in := range inputs {
		out := Mask([]byte(in))
		require.Len(t, out, len(in), "input %q", in)
		require.Equal(t, strings.Count(in, "\n"), strings.Count(string(out), "\n"), "input %q", in)
	}
}

func TestMask_InlineCode(t *testing.T) {
	require.Equal(t, "a     c", string(Mask([]byte("a `b` c"))))
}

func TestMask_InlineCodeWithLongerRun(t *testing.T) {
	out := string(Mask([]byte("x ``a ` b`` [l](l.md)")))
	require.Equal(t, "x "+strings.Repeat(" ", 9)+" [l](l.md)", out)
}

func TestMask_EscapedBacktickIsLiteral(t *testing.T) {
	out := string(Mask([]byte("\\` [a](a.md)")))
	require.Contains(t, out, "[a](a.md)")
}

func TestMask_FencedCodeBlock(t *testing.T) {
	out := string(Mask([]byte("```\n[x](missing.md)\n```\n[y](ok.md)\n")))
	require.NotContains(t, out, "missing.md")
	require.Contains(t, out, "[y](ok.md)")
}

func TestMask_TildeFenceRequiresMatchingMarker(t *testing.T) {
	out := string(Mask([]byte("~~~~\n```\n[x](a.md)\n~~~\n~~~~\n[y](b.md)\n")))
	require.NotContains(t, out, "a.md")
	require.Contains(t, out, "b.md")
}

func TestMask_UnterminatedFenceMasksToEnd(t *testing.T) {
	out := string(Mask([]byte("ok\n```\n[x](a.md)\n\n[y](b.md)\n")))
	require.Equal(t, "ok\n", out[:3])
	require.Empty(t, strings.TrimSpace(out[3:]))
}

func TestMask_CommentsSpanLines(t *testing.T) {
	out := string(Mask([]byte("a <!-- [x](a.md)\n[y](b.md) --> [z](c.md)")))
	require.NotContains(t, out, "a.md")
	require.NotContains(t, out, "b.md")
	require.Contains(t, out, "[z](c.md)")
}

func TestMask_ProcessingInstruction(t *testing.T) {
	out := string(Mask([]byte("<? [x](a.md) ?>[y](b.md)")))
	require.NotContains(t, out, "a.md")
	require.Contains(t, out, "[y](b.md)")
}

func TestMask_PreAndCodeTagsCaseInsensitive(t *testing.T) {
	out := string(Mask([]byte("<PRE>\n[x](a.md)\n</Pre>\n<code class=\"x\">[y](b.md)</CODE> [z](c.md)")))
	require.NotContains(t, out, "a.md")
	require.NotContains(t, out, "b.md")
	require.Contains(t, out, "[z](c.md)")
}

func TestMask_IndentedCode(t *testing.T) {
	out := string(Mask([]byte("para\n\n    [x](a.md)\n\n    [y](b.md)\n[z](c.md)\n")))
	require.NotContains(t, out, "a.md")
	require.NotContains(t, out, "b.md")
	require.Contains(t, out, "[z](c.md)")
}

func TestMask_IndentedContinuationIsNotCode(t *testing.T) {
	out := string(Mask([]byte("para\n    [x](a.md)\n")))
	require.Contains(t, out, "[x](a.md)")
}

func TestMask_CommentLine(t *testing.T) {
	for _, in := range []string{
		"[//]: # (hidden [x](a.md))",
		"[//]:# \"hidden\"",
		"  [//]:   #   # [x](a.md)",
	} {
		out := Mask([]byte(in))
		require.Empty(t, strings.TrimSpace(string(out)), "input %q", in)
	}
	require.Contains(t, string(Mask([]byte("[//]: x.md"))), "x.md")
}

func TestMaskRange(t *testing.T) {
	b := []byte("ab\ncd\r\nef")
	MaskRange(b, 1, 8)
	require.Equal(t, " \n  \r\n f", string(b[1:]))
}
