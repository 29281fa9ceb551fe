// Package telemetry groups the observability surfaces of Callisto.
//
// # Components
//
//   - metrics: Prometheus metrics for contract verification activity
//
// Logging is log/slog throughout; components take an optional *slog.Logger
// and fall back to slog.Default.
package telemetry
