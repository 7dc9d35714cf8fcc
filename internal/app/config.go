package app

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the election core.
type Config struct {
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// GenesisAdmin is the account seeded as the one SUPER_ADMIN.
	GenesisAdmin string `envconfig:"GENESIS_ADMIN" required:"true"`

	// JournalPGDSN, when set, enables the Postgres transition-log recorder.
	JournalPGDSN string `envconfig:"JOURNAL_PG_DSN"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(cfg.GenesisAdmin); err != nil {
		return nil, fmt.Errorf("genesis admin must be a valid account id: %w", err)
	}
	return &cfg, nil
}

// GenesisAdminID returns the parsed genesis admin account.
func (c *Config) GenesisAdminID() uuid.UUID {
	id, _ := uuid.Parse(c.GenesisAdmin)
	return id
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
