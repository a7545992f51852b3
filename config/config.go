// Package config loads the service configuration for the searchpipe
// commands from a YAML file, with sensible defaults when no file is given.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// Listen is the HTTP listen address of the transpile API.
	Listen string `yaml:"listen"`
	// Database is the path of the SQLite file holding the events table.
	Database string `yaml:"database"`
	// Table is the name of the events table populated by ingestion.
	Table string `yaml:"table"`
}

func Default() Config {
	return Config{
		Listen:   ":8080",
		Database: "events.db",
		Table:    "events",
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("%w: listen address must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("%w: database path must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Table) == "" {
		return fmt.Errorf("%w: table name must not be empty", ErrInvalidConfig)
	}
	return nil
}
