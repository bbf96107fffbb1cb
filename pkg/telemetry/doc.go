// Package telemetry groups cligate's observability subpackages; callers
// import the one they need directly rather than through an aggregator
// type.
//
//   - logging: structured log/slog setup with PII redaction
//   - metrics: Prometheus counters/gauges/histograms
//   - health: liveness/readiness probe handlers
package telemetry
