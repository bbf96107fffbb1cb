// Package health implements the model-health tracker: per-model
// attempt/success/failure counters, failure classification, consecutive-
// failure cooldown computation, and a suggested-state machine.
package health

import "strings"

// FailureKind is the classifier's closed output vocabulary (spec.md §4.7).
type FailureKind string

const (
	KindRateLimited       FailureKind = "rate_limited"
	KindCapacityExhausted FailureKind = "capacity_exhausted"
	KindQuotaExhausted    FailureKind = "quota_exhausted"
	KindTimeout           FailureKind = "timeout"
	KindAuth              FailureKind = "auth"
	KindProviderExit      FailureKind = "provider_exit"
	KindConfig            FailureKind = "config"
	KindInvalidModel      FailureKind = "invalid_model"
	KindUnknown           FailureKind = "unknown"
)

// classifierRule is one ordered substring-match rule; rules are checked in
// declaration order and the first match wins (spec.md §4.7, preserved
// exactly per DESIGN.md's Open Question decision — not reordered even
// though some substrings overlap).
type classifierRule struct {
	kind      FailureKind
	substrings []string
}

var classifierRules = []classifierRule{
	{KindInvalidModel, []string{"unknown model:"}},
	{KindConfig, []string{"fallback model not found", "duplicate model id", "does not expose model"}},
	{KindQuotaExhausted, []string{"insufficient_quota", "quota", "billing", "credit balance", "out of credits"}},
	{KindCapacityExhausted, []string{"resource_exhausted", "capacity", "model exhausted", "overloaded", "no available", "temporarily unavailable"}},
	{KindRateLimited, []string{"rate limit", "too many requests", "status code: 429", "http 429", "retry later"}},
	{KindTimeout, []string{"timed out", "timeout"}},
	{KindAuth, []string{"unauthorized", "forbidden", "invalid api key", "authentication", "not authenticated", "permission denied", "access denied"}},
	{KindProviderExit, []string{"provider command"}},
}

// Classify maps a lowercased error message to a FailureKind using the
// fixed 9-rule evaluation order above; the source's evaluation order was
// preserved (spec.md §9).
func Classify(message string) FailureKind {
	lower := strings.ToLower(message)
	for _, rule := range classifierRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return rule.kind
			}
		}
	}
	return KindUnknown
}
