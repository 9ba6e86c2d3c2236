// Package inspect serves a debug HTTP surface over a running engine:
// pass stats, structural diagnostics, display-tree snapshots, Prometheus
// metrics, and a WebSocket stream of per-pass stats.
//
// The inspector is a development tool. It is off by default and meant to
// bind to localhost.
package inspect
