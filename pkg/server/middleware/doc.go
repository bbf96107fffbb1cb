// Package middleware provides the HTTP cross-cutting concerns every
// request passes through before reaching a handler: request ID
// propagation, structured logging, CORS, panic recovery, and a
// per-request timeout backstop.
//
// Chain order as pkg/server assembles it (outermost to innermost):
//
//	Timeout(CORS(RequestID(Logging(Recovery(handler)))))
//
// Timeout is added only when a write timeout is configured.
package middleware
