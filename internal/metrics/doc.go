// Package metrics provides observability hooks for pkgdocs runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never needs nil checks:
//
//	p := pipeline.New(deps) // uses NoopRecorder
//	p.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// A one-shot CLI has no scrape endpoint, so PrometheusRecorder output is
// exported with WriteTextfile for the node_exporter textfile collector.
package metrics
