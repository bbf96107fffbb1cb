package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/hearthline/cligate/pkg/wireadapter"
)

// RecoveryMiddleware recovers from a handler panic and returns a 500
// server_error response, logging the stack trace but never exposing it.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(r.Context())
				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err, "request_id", requestID, "method", r.Method, "path", r.URL.Path,
					"stack", string(debug.Stack()))

				errResp := wireadapter.NewServerError("An internal error occurred. Please try again later.")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(errResp)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
