// Package wireadapter translates between the OpenAI chat-completions wire
// protocol and the core's provider.UnifiedRequest / provider.ProviderResult
// shapes. It owns request parsing, response/error formatting, and the
// field-by-field conversion; it does not know how a model is dispatched.
package wireadapter
