package wireadapter

import (
	"testing"

	"github.com/hearthline/cligate/pkg/provider"
)

func TestHandleErrorMapsProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"invalid model", &provider.InvalidModelError{ModelID: "bogus"}, 400, ErrorTypeInvalidRequest},
		{"config error", &provider.ConfigError{Field: "providerId", Message: "bad"}, 502, ErrorTypeBadGateway},
		{"timeout", &provider.TimeoutError{Executable: "cli", TimeoutMs: 1000}, 504, ErrorTypeGatewayTimeout},
		{"spawn error", &provider.SpawnError{Executable: "cli"}, 502, ErrorTypeBadGateway},
		{"parse error", &provider.ParseError{Reason: "no json"}, 502, ErrorTypeBadGateway},
		{"request error", &RequestError{Message: "bad body", Code: CodeInvalidJSON, Param: "body"}, 400, ErrorTypeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandleError(tt.err)
			if got.Error.HTTPStatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", got.Error.HTTPStatusCode(), tt.wantStatus)
			}
			if got.Error.Type != tt.wantType {
				t.Errorf("type = %q, want %q", got.Error.Type, tt.wantType)
			}
		})
	}
}
