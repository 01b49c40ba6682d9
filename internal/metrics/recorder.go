package metrics

import "time"

// ResultLabel enumerates run outcome categories for counters.
type ResultLabel string

const (
	ResultClean    ResultLabel = "clean"
	ResultFindings ResultLabel = "findings"
	ResultFailed   ResultLabel = "failed"
)

// Recorder defines observability hooks for link check runs. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe for
// concurrent use since documents are checked in parallel.
type Recorder interface {
	ObserveRunDuration(d time.Duration)
	ObserveDocumentDuration(d time.Duration)
	IncRunResult(result ResultLabel)
	IncDocuments()
	IncLinks(kind string)
	IncFindingReason(reason string)
	IncSlugCache(hit bool)
	SetConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRunDuration(time.Duration)      {}
func (NoopRecorder) ObserveDocumentDuration(time.Duration) {}
func (NoopRecorder) IncRunResult(ResultLabel)              {}
func (NoopRecorder) IncDocuments()                         {}
func (NoopRecorder) IncLinks(string)                       {}
func (NoopRecorder) IncFindingReason(string)               {}
func (NoopRecorder) IncSlugCache(bool)                     {}
func (NoopRecorder) SetConcurrency(int)                    {}
