// Package metrics records build and stage metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics stay
// optional and callers never nil-check. PrometheusRecorder collects into its
// own registry, which the CLI writes to a node_exporter textfile after a
// build when --metrics-file is given.
package metrics
