// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the runtime configuration from defaults, an optional
// YAML file and HISTORIAVIVA_ environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables mapped onto the configuration.
const EnvPrefix = "HISTORIAVIVA_"

// DefaultConfigPath is read when no explicit path is given and the file exists.
const DefaultConfigPath = "historiaviva.yaml"

// Config is the complete runtime configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Functions ServerConfig    `koanf:"functions"`
	Wikipedia WikipediaConfig `koanf:"wikipedia"`
	Log       LogConfig       `koanf:"log"`
}

// ServerConfig holds the listen address of one of the HTTP targets.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// WikipediaConfig controls the upstream client.
type WikipediaConfig struct {
	// BaseURL may contain a {lang} placeholder for the language edition.
	BaseURL   string        `koanf:"base_url"`
	UserAgent string        `koanf:"user_agent"`
	Timeout   time.Duration `koanf:"timeout"`
	// RateLimit is requests per second across all upstream calls; 0 disables it.
	RateLimit   float64 `koanf:"rate_limit"`
	Burst       int     `koanf:"burst"`
	Concurrency int     `koanf:"concurrency"`
	HTTPTrace   bool    `koanf:"http_trace"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Addr: "localhost:8080"},
		Functions: ServerConfig{Addr: "localhost:3000"},
		Wikipedia: WikipediaConfig{
			BaseURL:     "https://{lang}.wikipedia.org",
			Timeout:     10 * time.Second,
			RateLimit:   20,
			Burst:       10,
			Concurrency: 4,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration. An empty path falls back to DefaultConfigPath
// when that file exists.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err == nil {
			path = DefaultConfigPath
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps HISTORIAVIVA_WIKIPEDIA_USER_AGENT to wikipedia.user_agent.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))

	section, rest, found := strings.Cut(s, "_")
	if !found {
		return s
	}

	return section + "." + rest
}

// Validate checks the values that would make the client unusable.
func (c *Config) Validate() error {
	var errs []error

	if c.Wikipedia.BaseURL == "" {
		errs = append(errs, errors.New("wikipedia.base_url must not be empty"))
	}

	if c.Wikipedia.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("wikipedia.timeout must be positive, got %s", c.Wikipedia.Timeout))
	}

	if c.Wikipedia.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("wikipedia.concurrency must be positive, got %d", c.Wikipedia.Concurrency))
	}

	if c.Wikipedia.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("wikipedia.rate_limit must not be negative, got %v", c.Wikipedia.RateLimit))
	}

	if c.Wikipedia.RateLimit > 0 && c.Wikipedia.Burst <= 0 {
		errs = append(errs, fmt.Errorf("wikipedia.burst must be positive, got %d", c.Wikipedia.Burst))
	}

	return errors.Join(errs...)
}
