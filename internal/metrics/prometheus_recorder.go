package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "mdlinkcheck"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	runDuration      prom.Histogram
	documentDuration prom.Histogram
	runResults       *prom.CounterVec
	documents        prom.Counter
	links            *prom.CounterVec
	findingReasons   *prom.CounterVec
	slugCache        *prom.CounterVec
	concurrency      prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total duration of a link check run",
			Buckets:   prom.DefBuckets,
		})
		pr.documentDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "document_duration_seconds",
			Help:      "Duration of checking a single document",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		})
		pr.runResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_results_total",
			Help:      "Run outcomes by result",
		}, []string{"result"})
		pr.documents = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_checked_total",
			Help:      "Documents checked",
		})
		pr.links = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "links_total",
			Help:      "Link occurrences extracted by kind",
		}, []string{"kind"})
		pr.findingReasons = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "finding_reasons_total",
			Help:      "Failure reasons reported by reason code",
		}, []string{"reason"})
		pr.slugCache = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "slug_cache_lookups_total",
			Help:      "Anchor table cache lookups by result",
		}, []string{"result"})
		pr.concurrency = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "concurrency",
			Help:      "Configured document check concurrency",
		})
		reg.MustRegister(pr.runDuration, pr.documentDuration, pr.runResults, pr.documents, pr.links, pr.findingReasons, pr.slugCache, pr.concurrency)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveDocumentDuration(d time.Duration) {
	if p == nil || p.documentDuration == nil {
		return
	}
	p.documentDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunResult(result ResultLabel) {
	if p == nil || p.runResults == nil {
		return
	}
	p.runResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncDocuments() {
	if p == nil || p.documents == nil {
		return
	}
	p.documents.Inc()
}

func (p *PrometheusRecorder) IncLinks(kind string) {
	if p == nil || p.links == nil {
		return
	}
	p.links.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncFindingReason(reason string) {
	if p == nil || p.findingReasons == nil {
		return
	}
	p.findingReasons.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) IncSlugCache(hit bool) {
	if p == nil || p.slugCache == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.slugCache.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) SetConcurrency(n int) {
	if p == nil || p.concurrency == nil {
		return
	}
	p.concurrency.Set(float64(n))
}
