package wireadapter

import (
	"errors"
	"fmt"

	"github.com/hearthline/cligate/pkg/provider"
)

// HandleError maps an error returned from a RequestError or a
// provider.Dispatcher.RunModel call to its OpenAI-compatible response,
// per the closed error-kind table in spec.md §7.
func HandleError(err error) *ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var invalidModel *provider.InvalidModelError
	if errors.As(err, &invalidModel) {
		return NewInvalidRequestError(invalidModel.Error(), "model", CodeModelNotFound)
	}

	var configErr *provider.ConfigError
	if errors.As(err, &configErr) {
		return NewBadGatewayError(fmt.Sprintf("provider configuration error: %v", configErr))
	}

	var timeoutErr *provider.TimeoutError
	if errors.As(err, &timeoutErr) {
		return NewGatewayTimeoutError(fmt.Sprintf("provider request timed out: %v", timeoutErr))
	}

	var rateLimitErr *provider.UpstreamRateLimitError
	if errors.As(err, &rateLimitErr) {
		return NewRateLimitError(rateLimitErr.Error())
	}

	var quotaErr *provider.UpstreamQuotaError
	if errors.As(err, &quotaErr) {
		return NewRateLimitError(quotaErr.Error())
	}

	var capacityErr *provider.UpstreamCapacityError
	if errors.As(err, &capacityErr) {
		return NewServiceUnavailableError(capacityErr.Error())
	}

	var authErr *provider.UpstreamAuthError
	if errors.As(err, &authErr) {
		return NewErrorResponse(authErr.Error(), ErrorTypeAuthentication, "", "upstream_authentication_failed")
	}

	var exitErr *provider.ProviderExitError
	if errors.As(err, &exitErr) {
		return NewBadGatewayError(fmt.Sprintf("provider command failed: %v", exitErr))
	}

	var spawnErr *provider.SpawnError
	if errors.As(err, &spawnErr) {
		return NewBadGatewayError(fmt.Sprintf("failed to start provider command: %v", spawnErr))
	}

	var parseErr *provider.ParseError
	if errors.As(err, &parseErr) {
		return NewBadGatewayError(fmt.Sprintf("failed to parse provider response: %v", parseErr))
	}

	// A fallback-chain summary error wraps the last attempt's error; none
	// of the concrete types matched, so surface it as a generic bad-gateway.
	return NewBadGatewayError(fmt.Sprintf("model dispatch failed: %v", err))
}
