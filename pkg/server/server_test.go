package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hearthline/cligate/pkg/config"
	"github.com/hearthline/cligate/pkg/health"
	"github.com/hearthline/cligate/pkg/jobmanager"
	"github.com/hearthline/cligate/pkg/provider"
)

func testRegistry(t *testing.T) *provider.Registry {
	t.Helper()
	registry, err := provider.NewRegistry([]provider.ProviderBinding{
		{
			ID: "p1",
			Models: []provider.ModelConfig{{ID: "m1"}},
			ResponseCommand: provider.CommandSpec{
				Executable: "printf",
				Args:       []string{"hello"},
				Output:     provider.OutputText,
				TimeoutMs:  5000,
			},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return registry
}

func testDeps(t *testing.T) Deps {
	t.Helper()
	registry := testRegistry(t)
	tracker := health.NewTracker()
	return Deps{
		Registry:   registry,
		Dispatcher: provider.NewDispatcher(registry, tracker),
		Tracker:    tracker,
		Jobs:       jobmanager.NewManager(nil),
	}
}

func TestServerRequiresBearerTokenWhenConfigured(t *testing.T) {
	cfg := config.ServerConfig{AdminAPIKey: "secret", ShutdownTimeout: time.Second}
	srv := NewServer(cfg, testDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/admin/providers", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401; body=%s", w.Code, w.Body.String())
	}
}

func TestServerAllowsRequestWithCorrectBearerToken(t *testing.T) {
	cfg := config.ServerConfig{AdminAPIKey: "secret", ShutdownTimeout: time.Second}
	srv := NewServer(cfg, testDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/admin/providers", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", w.Code, w.Body.String())
	}
}

func TestServerChatCompletionsEndToEnd(t *testing.T) {
	cfg := config.ServerConfig{ShutdownTimeout: time.Second}
	srv := NewServer(cfg, testDeps(t))

	body := `{"model":"m1","messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", w.Code, w.Body.String())
	}
}
