// Package config loads the gateway's server settings and provider bindings
// from a YAML file, applies defaults, validates the result, and (via
// RegistryWatcher) keeps a live provider.Registry in sync with edits to
// that file.
package config

import (
	"time"

	"github.com/hearthline/cligate/pkg/provider"
)

// Config is the root of the gateway's YAML configuration file.
type Config struct {
	Server    ServerConfig               `yaml:"server"`
	Logging   LoggingConfig              `yaml:"logging"`
	Providers []provider.ProviderBinding `yaml:"providers"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	ListenAddress   string        `yaml:"listenAddress"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// AdminAPIKey, if set, is required as a bearer token on every request
	// except the unauthenticated /healthz and /readyz probes.
	AdminAPIKey string `yaml:"adminApiKey"`
}

// LoggingConfig configures the process-wide slog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
