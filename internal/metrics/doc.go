// Package metrics records per-run counters and latencies and exports them in
// the Prometheus text exposition format for node_exporter's textfile collector.
package metrics
