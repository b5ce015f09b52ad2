// Package config defines the process-wide configuration for the RequestPlex
// notification core. Configuration is loaded once at startup and is immutable
// thereafter; components receive only the subsets they require. Channel
// settings are NOT part of this config — they are supplied per dispatch by
// the surrounding application as read-only snapshots.
package config

import (
	"time"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used in configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Customization CustomizationConfig
	Outbound      OutboundConfig
	Database      DatabaseConfig
}

// CustomizationConfig mirrors the application's customization collaborator.
// ApplicationURL is used to build deep links back into the request pages;
// when empty, author deep links are omitted from payloads.
type CustomizationConfig struct {
	// Trailing slash included, e.g. "https://requests.example.com/".
	ApplicationURL string `envconfig:"APPLICATION_URL" validate:"omitempty,url"`

	// UseAliasAsDisplayName selects the alias (when present) over the plain
	// username everywhere a requester is referenced in one rendered payload.
	UseAliasAsDisplayName bool `envconfig:"USE_ALIAS_AS_DISPLAY_NAME" default:"true"`
}

// OutboundConfig tunes the shared outbound HTTP client used by all provider
// clients (Discord, Slack, SendGrid, Pushbullet).
type OutboundConfig struct {
	UserAgent  string        `envconfig:"OUTBOUND_USER_AGENT" default:"RequestPlex-Notify/1.0"`
	Timeout    time.Duration `envconfig:"OUTBOUND_TIMEOUT" default:"10s"`
	MaxRetries int           `envconfig:"OUTBOUND_MAX_RETRIES" default:"2" validate:"gte=0,lte=5"`
}

// DatabaseConfig holds the connection string for the Postgres-backed template
// store. Optional: when URL is empty the application falls back to the seeded
// in-memory store.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"omitempty"`

	MaxConns       int           `envconfig:"DB_MAX_CONNS" default:"5"`
	AcquireTimeout time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
}
