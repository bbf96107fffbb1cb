package server

import (
	"net/http"

	"github.com/hearthline/cligate/pkg/wireadapter"
)

// authMiddleware requires every request to carry a bearer token equal to
// apiKey. An empty apiKey disables auth entirely (local/dev use); this is
// the gateway's only access control (spec.md's wire adapter is explicitly
// single-key, no rate limiting, no multi-tenant isolation).
func authMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if wireadapter.ExtractAPIKey(r) != apiKey {
				errResp := wireadapter.NewErrorResponse(
					"invalid or missing API key", wireadapter.ErrorTypeAuthentication, "", "invalid_api_key")
				_ = wireadapter.WriteErrorResponse(w, errResp)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
