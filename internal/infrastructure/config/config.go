package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all runtime configuration. Provider credentials live
// here and are injected into adapters explicitly; adapters never read
// the environment themselves, which keeps them pure and testable.
type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret enables bearer-token auth on /v1 routes when set.
	JWTSecret string `env:"JWT_SECRET"`

	// HTTPTimeout is the total per-request timeout of the shared
	// outbound HTTP client.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT, default=20s"`

	DHL DHLConfig
	GLS GLSConfig
}

// DHLConfig configures the DHL Unified Tracking API adapter. APIKey is
// required for DHL lookups only; its absence is a configuration error
// surfaced before any network call.
type DHLConfig struct {
	APIKey string `env:"DHL_API_KEY"`
	// Server selects "prod" (default) or "test" base URL.
	Server string `env:"DHL_SERVER, default=prod"`
}

// GLSConfig configures the GLS track-and-trace adapter, which uses
// OAuth2 client credentials.
type GLSConfig struct {
	ClientID     string `env:"GLS_CLIENT_ID"`
	ClientSecret string `env:"GLS_CLIENT_SECRET"`
	// Server selects "prod" (default), "sandbox" or "qas".
	Server string `env:"GLS_SERVER, default=prod"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
