package app

import (
	"fmt"
	"slices"

	coreconfig "github.com/m3rciful/estatebot/core/config"
	coredatabase "github.com/m3rciful/estatebot/core/database"
)

// OperatorConfig names the chat that receives completed listings.
type OperatorConfig struct {
	ChatID int64 `yaml:"chat_id" envconfig:"OPERATOR_CHAT_ID"`
}

// Config is the full bot configuration: the reusable core plus the listing bot sections.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Operator OperatorConfig      `yaml:"operator"`
	Database coredatabase.Config `yaml:"database"`
}

// CoreConfig exposes the embedded core section to the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Load reads path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if c.Operator.ChatID == 0 {
		return fmt.Errorf("operator.chat_id is required")
	}
	// Answers are never throttled; a dropped answer leaves the user without a prompt.
	if !slices.Contains(c.RateLimit.ExcludeUpdates, coreconfig.UpdateMessage) {
		c.RateLimit.ExcludeUpdates = append(c.RateLimit.ExcludeUpdates, coreconfig.UpdateMessage)
	}
	// A private operator chat doubles as the admin when none is set.
	if c.Telegram.AdminID == 0 && c.Operator.ChatID > 0 {
		c.Telegram.AdminID = c.Operator.ChatID
	}
	return c.Database.Normalize()
}
