// Package metrics exposes contract verification activity as Prometheus
// metrics.
//
// The Collector implements both contract.StatsSink and
// contract.ViolationSink, so one instance observes verification throughput,
// latency, violations, and compiled-contract counts for any enforcers it is
// wired to. Each collector owns (or is handed) its own registry; nothing is
// registered globally.
package metrics
