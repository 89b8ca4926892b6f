// Package config loads the service configuration from a YAML or JSON
// file with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/solvekit/uras/core/factory"
	"github.com/solvekit/uras/core/metrics"
)

type Config struct {
	Logging LoggingConfig  `json:"logging"`
	Metrics metrics.Config `json:"metrics"`
	Solver  SolverConfig   `json:"solver"`
	Server  ServerConfig   `json:"server"`
}

// ServerConfig configures the HTTP API started by the serve command.
type ServerConfig struct {
	Addr string `json:"addr"`
	// Token guards the history endpoint when non-empty.
	Token string `json:"token"`
}

// SetDefaults applies the default listen address.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// SolverConfig carries the algorithm applied to requests that do not
// name one.
type SolverConfig struct {
	Default factory.ModuleConfig `json:"default"`
}

// SetDefaults falls back to the greedy scheduler.
func (c *SolverConfig) SetDefaults() {
	if c.Default.Type == "" {
		c.Default.Type = "greedy"
	}
}

// Load reads the file at path. Environment variables prefixed with
// URAS_ override file values, with __ separating nested keys.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("URAS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "uras_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Logging.SetDefaults()
	cfg.Solver.SetDefaults()
	cfg.Server.SetDefaults()
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
