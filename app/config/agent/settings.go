// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config implements the helios-agent configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/helios-io/helios/app/config"
	"github.com/helios-io/helios/app/types"
)

const (
	DefaultBatchSize          = 100
	DefaultFlushInterval      = 30 * time.Second
	DefaultEndpointTimeout    = 30 * time.Second
	DefaultRetryAttempts      = 3
	DefaultRetryDelay         = 2 * time.Second
	DefaultCollectionInterval = 15 * time.Second
)

// Endpoint is the server connection block (spec §6.3).
type Endpoint struct {
	URL           string        `yaml:"url" env:"HELIOS_ENDPOINT" default:"http://localhost:8080" env-description:"server ingest base URL"`
	APIKey        string        `yaml:"api_key" env:"HELIOS_API_KEY" env-description:"bearer/API key sent with every ingest request"`
	Timeout       time.Duration `yaml:"timeout" default:"30s" env-description:"HTTP client timeout per attempt"`
	RetryAttempts int           `yaml:"retry_attempts" default:"3" env-description:"maximum flush attempts before re-buffering"`
	RetryDelay    time.Duration `yaml:"retry_delay" default:"2s" env-description:"linear backoff unit: sleep = retry_delay * attempt"`
}

// LocalAPI configures the agent's own loopback metrics/healthz surface
// (spec §4.1 supplement).
type LocalAPI struct {
	Address string `yaml:"address" default:"127.0.0.1:9110" env:"HELIOS_LOCAL_API_ADDRESS" env-description:"bind address for the local /metrics and /healthz surface"`
	Enabled bool   `yaml:"enabled" default:"true" env:"HELIOS_LOCAL_API_ENABLED"`
}

// Settings is the complete helios-agent configuration.
type Settings struct {
	Logging       config.Logging       `yaml:"logging"`
	Endpoint      Endpoint             `yaml:"endpoint"`
	Sources       []types.SourceConfig `yaml:"sources"`
	BatchSize     int                  `yaml:"batch_size" default:"100" env-description:"maximum samples per flush POST"`
	FlushInterval time.Duration        `yaml:"flush_interval" default:"30s" env-description:"time between flush attempts"`
	LogLevel      string               `yaml:"log_level" env-description:"deprecated alias for logging.level, kept for config-file compatibility"`
	LocalAPI      LocalAPI             `yaml:"local_api"`
}

// NewSettings loads and layers the given config files in order, applying
// env overrides per tag, and falls back to a single-source environment
// config when none apply (spec §6.3 default search order is resolved by
// DefaultConfigPath before this is called).
func NewSettings(configFiles ...string) (*Settings, error) {
	var cfg Settings

	if configFiles == nil {
		return nil, errors.New("the config files slice cannot be nil")
	}

	read := false
	for _, cfgFile := range configFiles {
		if cfgFile == "" {
			continue
		}
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			continue
		}
		if err := cleanenv.ReadConfig(cfgFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from %s: %w", cfgFile, err)
		}
		read = true
	}
	if !read {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from environment: %w", err)
		}
		cfg.Sources = []types.SourceConfig{{
			Name:     "system",
			Type:     "system",
			Enabled:  true,
			Interval: DefaultCollectionInterval,
		}}
	}

	cfg.applyPerSourceAPIKeyOverrides()
	cfg.applyDefaults()
	return &cfg, nil
}

// applyPerSourceAPIKeyOverrides implements the `<TYPE>_API_KEY` env override
// named in spec §6.3, since cleanenv's struct tags cannot express a
// slice-indexed, type-keyed override.
func (s *Settings) applyPerSourceAPIKeyOverrides() {
	for i := range s.Sources {
		envName := strings.ToUpper(s.Sources[i].Type) + "_API_KEY"
		if v := os.Getenv(envName); v != "" {
			s.Sources[i].APIKey = v
		}
	}
}

func (s *Settings) applyDefaults() {
	if s.BatchSize <= 0 {
		s.BatchSize = DefaultBatchSize
	}
	if s.FlushInterval <= 0 {
		s.FlushInterval = DefaultFlushInterval
	}
	if s.Endpoint.Timeout <= 0 {
		s.Endpoint.Timeout = DefaultEndpointTimeout
	}
	if s.Endpoint.RetryAttempts <= 0 {
		s.Endpoint.RetryAttempts = DefaultRetryAttempts
	}
	if s.Endpoint.RetryDelay <= 0 {
		s.Endpoint.RetryDelay = DefaultRetryDelay
	}
	if s.LogLevel != "" && s.Logging.Level == "" {
		s.Logging.Level = s.LogLevel
	}
	for i := range s.Sources {
		if s.Sources[i].Interval <= 0 {
			s.Sources[i].Interval = DefaultCollectionInterval
		}
	}
}

// DefaultConfigPath resolves the search order from spec §6.3: explicit path
// first, then the cwd-relative and user/system defaults. Returns "" when
// none exist, signalling NewSettings to fall back to an environment-derived
// single-source config.
func DefaultConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidates := []string{"./helios-agent.yaml", "./helios-agent.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".helios", "agent.yaml"))
	}
	candidates = append(candidates, "/etc/helios/agent.yaml")
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func (s *Settings) ToYAML() ([]byte, error) {
	raw, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode into yaml: %w", err)
	}
	return raw, nil
}

func (s *Settings) ToBytes() ([]byte, error) {
	return s.ToYAML()
}
