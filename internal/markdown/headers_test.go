package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Main Title", want: "main-title"},
		{in: "Hello, World! (v2)", want: "hello-world-v2"},
		{in: "`code` header", want: "code-header"},
		{in: "main_title", want: "main_title"},
		{in: "What's new?", want: "whats-new"},
		{in: "  -Leading and trailing-  ", want: "leading-and-trailing"},
		{in: "A -- B", want: "a---b"},
		{in: "Path/To\\File: \"x\"", want: "pathtofile-x"},
		{in: "Foo &amp; Bar", want: "foo-bar"},
		{in: "Über Straße", want: "über-straße"},
		{in: "Hidden <!-- note --> part", want: "hidden-note-part"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, Slugify(tt.in))
			require.Equal(t, Slugify(tt.in), Slugify(tt.in))
		})
	}
}

func TestBuildSlugTable_ATXAndSetext(t *testing.T) {
	src := "# Main Title\n\nIntro\n\nSecond Section\n==============\n\nThird `one`\n---\n\n### Closed ###\n"
	table := BuildSlugTable([]byte(src))

	require.Equal(t, []string{"main-title", "second-section", "third-one", "closed"}, table.Slugs())
	require.Equal(t, 1, table.Headers[0].Level)
	require.Equal(t, 1, table.Headers[1].Level)
	require.Equal(t, 2, table.Headers[2].Level)
	require.Equal(t, 3, table.Headers[3].Level)
	require.Equal(t, "Third one", table.Headers[2].Text)
	require.Equal(t, 5, table.Headers[1].Line)
}

func TestBuildSlugTable_DuplicateSuffixes(t *testing.T) {
	table := BuildSlugTable([]byte("# Intro\n## Intro\n### Intro\n# Intro 1\n"))
	require.Equal(t, []string{"intro", "intro-1", "intro-2", "intro-1-1"}, table.Slugs())
}

func TestBuildSlugTable_SuffixSkipsExistingSlug(t *testing.T) {
	table := BuildSlugTable([]byte("# A 1\n# A\n# A\n"))
	require.Equal(t, []string{"a-1", "a", "a-2"}, table.Slugs())
}

func TestBuildSlugTable_RequiresSpaceAfterHashes(t *testing.T) {
	table := BuildSlugTable([]byte("#NotAHeader\n####### seven\n"))
	require.Empty(t, table.Headers)
}

func TestBuildSlugTable_BlankLineInvalidatesSetext(t *testing.T) {
	table := BuildSlugTable([]byte("Title\n\n=====\n"))
	require.Empty(t, table.Headers)
}

func TestBuildSlugTable_ListItemIsNotSetextText(t *testing.T) {
	table := BuildSlugTable([]byte("- item\n---\n"))
	require.Empty(t, table.Headers)
}

func TestBuildSlugTable_IgnoresHeadersInCode(t *testing.T) {
	src := "```\n# Not a header\n```\n\n    # Indented\n\n<!--\n# Commented\n-->\n# Real\n"
	table := BuildSlugTable([]byte(src))
	require.Equal(t, []string{"real"}, table.Slugs())
}

func TestAnchorTable_Lookup(t *testing.T) {
	table := BuildSlugTable([]byte("# Main Title\n<a name=\"Custom-Spot\"></a>\n<div id='box'></div>\n"))

	require.Equal(t, AnchorFound, table.Lookup("main-title"))
	require.Equal(t, AnchorCaseMismatch, table.Lookup("MAIN-TITLE"))
	require.Equal(t, AnchorMissing, table.Lookup("other"))
	require.Equal(t, AnchorFound, table.Lookup("Custom-Spot"))
	require.Equal(t, AnchorCaseMismatch, table.Lookup("custom-spot"))
	require.Equal(t, AnchorFound, table.Lookup("box"))
	require.Equal(t, []string{"Custom-Spot", "box"}, table.Explicit)

	var empty *AnchorTable
	require.Equal(t, AnchorMissing, empty.Lookup("x"))
}
