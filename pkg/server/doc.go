// Package server wires cligate's HTTP surface: the OpenAI-compatible chat
// completions and models endpoints, the admin API over the provider
// registry/health tracker/job manager, Prometheus metrics, and unauthenticated
// liveness/readiness probes, behind a shared ambient middleware chain.
//
// # Basic usage
//
//	srv := server.NewServer(cfg.Server, server.Deps{
//	    Registry:   registry,
//	    Dispatcher: dispatcher,
//	    Tracker:    tracker,
//	    Jobs:       jobs,
//	    Metrics:    collector,
//	})
//	if err := srv.ListenAndServe(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
//   - POST /v1/chat/completions  - chat completion dispatch
//   - GET  /v1/models            - model listing
//   - GET  /admin/...            - provider/job/health admin surface
//   - GET  /metrics              - Prometheus exposition (if configured)
//   - GET  /healthz              - liveness probe, unauthenticated
//   - GET  /readyz               - readiness probe, unauthenticated
//
// # Middleware chain
//
// Requests pass through, outermost first: an optional per-request write
// timeout, CORS, RequestID, Logging, Recovery, then (for every route but
// the probes) the static bearer-token auth check.
package server
