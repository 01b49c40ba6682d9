package lint

import (
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/mdlinkcheck/internal/linkcheck"
)

// FileReport groups the findings of one document.
type FileReport struct {
	FilePath    string              `json:"filePath"`
	FoundIssues []linkcheck.Finding `json:"foundIssues"`
}

// Result contains all findings of a run, one FileReport per document with
// findings, sorted by file path.
type Result struct {
	RunID      string
	Root       string
	Revision   string // git HEAD when known
	Reports    []FileReport
	FilesTotal int
	Duration   time.Duration
}

// HasFindings returns true if any document has findings.
func (r *Result) HasFindings() bool {
	return len(r.Reports) > 0
}

// FindingCount returns the number of findings across all documents.
func (r *Result) FindingCount() int {
	count := 0
	for _, report := range r.Reports {
		count += len(report.FoundIssues)
	}
	return count
}

// ReasonCounts returns how often each reason was reported.
func (r *Result) ReasonCounts() map[linkcheck.Reason]int {
	counts := make(map[linkcheck.Reason]int)
	for _, report := range r.Reports {
		for _, finding := range report.FoundIssues {
			for _, reason := range finding.Reasons {
				counts[reason]++
			}
		}
	}
	return counts
}

// RelPath returns path relative to the run root when possible.
func (r *Result) RelPath(path string) string {
	if r.Root == "" {
		return path
	}
	rel, err := filepath.Rel(r.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// Config contains configuration for the linter.
type Config struct {
	// DocumentExtensions selects which files are checked.
	DocumentExtensions []string

	// Exclude holds glob patterns matched against slash-separated paths
	// relative to the root and against base names.
	Exclude []string

	// Concurrency bounds how many documents are checked at once.
	Concurrency int

	// Only restricts checking to these absolute paths when non-nil. Links
	// may still point at documents outside the set.
	Only []string
}

// IsDocFile returns true if the file has one of the document extensions.
func IsDocFile(path string, exts []string) bool {
	if len(exts) == 0 {
		exts = linkcheck.DefaultDocumentExtensions
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) || ext == "."+strings.ToLower(e) {
			return true
		}
	}
	return false
}
