package metrics

import (
	"sync"
	"testing"
	"time"
)

type testRecorder struct {
	mu        sync.Mutex
	runs      int
	documents int
	links     map[string]int
	reasons   map[string]int
	results   map[ResultLabel]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{links: map[string]int{}, reasons: map[string]int{}, results: map[ResultLabel]int{}}
}

func (t *testRecorder) ObserveRunDuration(time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs++
}
func (t *testRecorder) ObserveDocumentDuration(time.Duration) {}
func (t *testRecorder) IncRunResult(result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results[result]++
}
func (t *testRecorder) IncDocuments() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.documents++
}
func (t *testRecorder) IncLinks(kind string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.links[kind]++
}
func (t *testRecorder) IncFindingReason(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reasons[reason]++
}
func (t *testRecorder) IncSlugCache(bool) {}
func (t *testRecorder) SetConcurrency(int) {}

func TestRecorderImplementations(t *testing.T) {
	var _ Recorder = NoopRecorder{}
	var _ Recorder = (*PrometheusRecorder)(nil)
	var _ Recorder = newTestRecorder()
}

func TestNoopRecorderDoesNothing(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveRunDuration(time.Second)
	r.IncDocuments()
	r.IncLinks("inline")
	r.IncFindingReason("FILE_NOT_FOUND")
	r.IncRunResult(ResultClean)
}

func TestTestRecorderConcurrentUse(t *testing.T) {
	r := newTestRecorder()
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.IncDocuments()
			r.IncLinks("inline")
		}()
	}
	wg.Wait()
	if r.documents != 10 || r.links["inline"] != 10 {
		t.Fatalf("unexpected counts: documents=%d links=%d", r.documents, r.links["inline"])
	}
}
