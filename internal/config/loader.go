// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Load a .env file via godotenv (non-fatal if absent).
//  2. Use envconfig to process struct tags and populate the Config struct.
//  3. Validate the struct using go-playground/validator; any invalid value
//     fails loading immediately (fail fast).
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load resolves the Config from the process environment, optionally seeded
// from the .env file at dotenvPath (pass "" to use the default "./.env").
func Load(dotenvPath string) (*Config, error) {
	if dotenvPath == "" {
		dotenvPath = ".env"
	}
	// Missing dotenv is the normal case in production; only report it when
	// loading an explicitly requested path fails for another reason.
	_ = godotenv.Load(dotenvPath)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: processing environment: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate runs struct-tag validation over the whole config tree.
func validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	return nil
}
