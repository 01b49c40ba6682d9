// Package metrics provides observability hooks for link check runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	checker := linkcheck.NewChecker(resolver, linkcheck.WithRecorder(recorder))
//
// PrometheusRecorder registers counters and histograms on a registry. A
// one-shot CLI run has nothing to scrape it, so WriteTextfile exports the
// registry in the node_exporter textfile format instead.
package metrics
