package wireadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// MaxRequestBodySize caps a chat-completion request body (spec.md's
	// wire adapter is a minimal collaborator, not a hardening layer, but a
	// caller sending an unbounded body shouldn't be able to exhaust memory).
	MaxRequestBodySize = 10 * 1024 * 1024

	authorizationHeader = "Authorization"
	requestIDHeader     = "X-Request-ID"
)

// ParseChatCompletionRequest reads, size-limits, decodes, and validates an
// HTTP request body into a ChatCompletionRequest.
func ParseChatCompletionRequest(r *http.Request) (*ChatCompletionRequest, error) {
	limited := io.LimitReader(r.Body, MaxRequestBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) > MaxRequestBodySize {
		return nil, &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize),
			Code:    CodeRequestTooLarge,
			Param:   "body",
		}
	}

	var req ChatCompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    CodeInvalidJSON,
			Param:   "body",
		}
	}

	if err := req.Validate(); err != nil {
		if valErr, ok := err.(*ValidationError); ok {
			return nil, &RequestError{Message: valErr.Message, Code: CodeInvalidValue, Param: valErr.Field}
		}
		return nil, err
	}
	return &req, nil
}

// ExtractAPIKey reads the bearer token from the Authorization header, or
// "" if missing/malformed.
func ExtractAPIKey(r *http.Request) string {
	header := r.Header.Get(authorizationHeader)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ExtractRequestID reads the caller-supplied X-Request-ID header, or ""
// if absent (the caller should fall back to a generated id).
func ExtractRequestID(r *http.Request) string {
	return r.Header.Get(requestIDHeader)
}

// RequestError is a wire-level parsing or validation failure.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

func (e *RequestError) Error() string { return e.Message }

// ToErrorResponse converts a RequestError to its OpenAI error shape.
func (e *RequestError) ToErrorResponse() *ErrorResponse {
	return NewInvalidRequestError(e.Message, e.Param, e.Code)
}
