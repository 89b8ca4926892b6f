package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// LoggingConfig controls the global log output.
type LoggingConfig struct {
	// Level is a zerolog level name: "debug", "info", "warn", "error".
	Level string `json:"level"`
	// Pretty switches to human-readable console output.
	Pretty bool `json:"pretty"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the level name.
func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("unknown log level %s", c.Level)
	}
	return nil
}
