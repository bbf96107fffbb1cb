package provider

import (
	"errors"
	"fmt"

	"github.com/hearthline/cligate/pkg/health"
)

// ErrEmptyRegistry is returned by NewRegistry when given no bindings.
var ErrEmptyRegistry = errors.New("provider registry: no provider bindings supplied")

// InvalidModelError means the requested model id is not registered. The
// dispatcher fails the request immediately on this error; no fallback slot
// is consumed (spec.md §4.5, §7).
type InvalidModelError struct {
	ModelID string
}

func (e *InvalidModelError) Error() string {
	return fmt.Sprintf("unknown model: %s", e.ModelID)
}

// ConfigError is a configuration problem; construction-time failures and
// runtime dangling fallbacks both surface as this same error type.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// danglingFallbackError builds the config error spec.md §4.5 requires when a
// fallback id does not resolve to a registered model.
func danglingFallbackError(modelID string) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf("fallback model not found: %s", modelID)}
}

// TimeoutError means the CLI executor killed the child for exceeding
// timeoutMs.
type TimeoutError struct {
	Executable string
	TimeoutMs  int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider command timed out after %dms: %s", e.TimeoutMs, e.Executable)
}

// ProviderExitError means the child exited non-zero. Message includes exit
// code and truncated stderr/stdout.
type ProviderExitError struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

const maxErrorOutputChars = 2000

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}

func (e *ProviderExitError) Error() string {
	return fmt.Sprintf("provider command exited with code %d; stderr=%q stdout=%q",
		e.ExitCode, truncate(e.Stderr, maxErrorOutputChars), truncate(e.Stdout, maxErrorOutputChars))
}

// SpawnError means the OS refused to start the child process.
type SpawnError struct {
	Executable string
	Err        error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %s: %v", e.Executable, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ParseError means the response command's stdout could not be parsed per
// its output contract (empty or garbage output); classified provider_exit
// (spec.md §7).
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("provider command produced unparseable output: %s", e.Reason)
}

// upstreamError is the shared shape of the four Upstream* errors, inferred
// from provider stderr/stdout via health.Classify.
type upstreamError struct {
	kind    health.FailureKind
	message string
}

func (e *upstreamError) Error() string { return e.message }

// Kind returns the classifier's FailureKind for this error, letting callers
// outside this package branch on it without string-matching Error().
func (e *upstreamError) Kind() health.FailureKind { return e.kind }

// UpstreamAuthError wraps a classified authentication failure.
type UpstreamAuthError struct{ upstreamError }

// UpstreamQuotaError wraps a classified quota-exhaustion failure.
type UpstreamQuotaError struct{ upstreamError }

// UpstreamCapacityError wraps a classified capacity-exhaustion failure.
type UpstreamCapacityError struct{ upstreamError }

// UpstreamRateLimitError wraps a classified rate-limit failure.
type UpstreamRateLimitError struct{ upstreamError }

// wrapChainError builds the multi-attempt chain-summary message (spec.md
// §4.5): "model execution failed after fallback chain: m1 -> m2 -> ....
// last error: <msg>", wrapping lastErr.
func wrapChainError(attempted []string, lastErr error) error {
	chain := attempted[0]
	for _, id := range attempted[1:] {
		chain += " -> " + id
	}
	return fmt.Errorf("model execution failed after fallback chain: %s. last error: %w", chain, lastErr)
}
