// Package metrics exposes the gateway's Prometheus metrics: counters that
// mirror pkg/health.Tracker's attempt/success/failure/fallback events,
// gauges mirroring pkg/jobmanager.Manager's current job table, and HTTP
// request counters for the wire-protocol endpoints.
//
// # Usage
//
//	collector := metrics.NewCollector(metrics.Config{Enabled: true}, nil)
//	mux.Handle("/metrics", collector.Handler())
//
//	collector.RecordAttempt(modelID)
//	collector.RecordSuccess(modelID)
//	collector.RecordFailure(modelID, string(health.KindTimeout))
//
// # Prometheus Endpoint
//
// Metrics are exposed in standard Prometheus text format:
//
//	# HELP cligate_model_attempts_total Total dispatch attempts per model.
//	# TYPE cligate_model_attempts_total counter
//	cligate_model_attempts_total{model="gpt-4o-codex"} 12
package metrics
