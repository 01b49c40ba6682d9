package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"git.home.luguber.info/inful/mdlinkcheck/internal/linkcheck"
)

// Formatter formats link check results for output.
type Formatter interface {
	Format(w io.Writer, result *Result) error
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct {
	useColor bool
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(useColor bool) *TextFormatter {
	return &TextFormatter{useColor: useColor}
}

// textStyles renders through lipgloss when color is on and is the identity
// otherwise.
type textStyles struct {
	file    func(...string) string
	reason  func(...string) string
	success func(...string) string
	failure func(...string) string
	dim     func(...string) string
}

func (f *TextFormatter) styles(w io.Writer) textStyles {
	if !f.useColor {
		plain := func(s ...string) string { return strings.Join(s, " ") }
		return textStyles{file: plain, reason: plain, success: plain, failure: plain, dim: plain}
	}
	r := lipgloss.NewRenderer(w)
	return textStyles{
		file:    r.NewStyle().Bold(true).Render,
		reason:  r.NewStyle().Foreground(lipgloss.Color("9")).Render,
		success: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true).Render,
		failure: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Render,
		dim:     r.NewStyle().Faint(true).Render,
	}
}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, result *Result) error {
	st := f.styles(w)

	// Header
	if _, err := fmt.Fprintf(w, "Checking links in: %s\n", result.Root); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for _, report := range result.Reports {
		if err := f.formatReport(w, st, result, report); err != nil {
			return err
		}
	}

	// Summary
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Results:\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %d files scanned\n", result.FilesTotal); err != nil {
		return err
	}
	if count := result.FindingCount(); count > 0 {
		if _, err := fmt.Fprintf(w, "  %d broken link%s in %d file%s\n",
			count, pluralize(count), len(result.Reports), pluralize(len(result.Reports))); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, renderReasonTable(result.ReasonCounts())); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	// Final message
	msg := st.success("✨ All links resolve!")
	if result.HasFindings() {
		msg = st.failure("❌ Documentation has broken links.")
	}
	if _, err := fmt.Fprintln(w, msg); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

// formatReport prints the findings of one file.
func (f *TextFormatter) formatReport(w io.Writer, st textStyles, result *Result, report FileReport) error {
	if _, err := fmt.Fprintf(w, "✗ %s\n", st.file(result.RelPath(report.FilePath))); err != nil {
		return err
	}
	for _, finding := range report.FoundIssues {
		if _, err := fmt.Fprintf(w, "  %s %s\n", st.dim(fmt.Sprintf("%d:", finding.Line)), finding.MarkdownLink); err != nil {
			return err
		}
		reasons := make([]string, len(finding.Reasons))
		for i, r := range finding.Reasons {
			reasons[i] = string(r)
		}
		if _, err := fmt.Fprintf(w, "    %s\n", st.reason(strings.Join(reasons, ", "))); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// renderReasonTable lists every reported reason with its count.
func renderReasonTable(counts map[linkcheck.Reason]int) string {
	var buf strings.Builder

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Reason", "Count"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	for _, reason := range linkcheck.AllReasons() {
		if n := counts[reason]; n > 0 {
			table.Append([]string{string(reason), strconv.Itoa(n)})
		}
	}
	table.Render()

	return buf.String()
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	RunID         string       `json:"runId"`
	Root          string       `json:"root"`
	Revision      string       `json:"revision,omitempty"`
	FilesTotal    int          `json:"filesTotal"`
	FindingsTotal int          `json:"findingsTotal"`
	Results       []FileReport `json:"results"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result) error {
	output := JSONOutput{
		RunID:         result.RunID,
		Root:          result.Root,
		Revision:      result.Revision,
		FilesTotal:    result.FilesTotal,
		FindingsTotal: result.FindingCount(),
		Results:       result.Reports,
	}
	if output.Results == nil {
		output.Results = []FileReport{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string, useColor bool) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter(useColor)
	}
}
