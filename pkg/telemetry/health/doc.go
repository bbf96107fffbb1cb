// Package health provides liveness/readiness probe handlers for the
// gateway's Kubernetes-style health endpoints.
//
// # Usage
//
//	checker := health.New(0)
//	checker.RegisterCheck("providers", func(ctx context.Context) error {
//	    if len(registry.ListProviders()) == 0 {
//	        return errors.New("no providers configured")
//	    }
//	    return nil
//	})
//	mux.HandleFunc("GET /healthz", checker.LivenessHandler())
//	mux.HandleFunc("GET /readyz", checker.ReadinessHandler())
//
// Liveness always returns 200 while the process is up. Readiness runs
// every registered check and returns 503 if any of them fail.
package health
