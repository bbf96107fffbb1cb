package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hearthline/cligate/pkg/wireadapter"
)

// TimeoutMiddleware bounds total request handling time, responding 504 if
// the handler has not finished when it elapses. The handler goroutine is
// left to finish in the background; with CLI providers already enforcing
// their own timeoutMs, this is a backstop, not the primary timeout path.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(w, r.WithContext(ctx))
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					errResp := wireadapter.NewGatewayTimeoutError("request timeout: the request took too long to complete")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusGatewayTimeout)
					_ = json.NewEncoder(w).Encode(errResp)
				}
			}
		})
	}
}
