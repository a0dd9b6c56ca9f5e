// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config implements the helios-server configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/helios-io/helios/app/config"
)

// Database configures the embedded store (spec §4.3, §6.4).
type Database struct {
	Path      string `yaml:"path" default:"./data/helios.db" env:"DATABASE_PATH" env-description:"embedded store file path; :memory: opens a non-persistent sqlite database"`
	MaxPoints int    `yaml:"max_points" default:"100000" env:"DATABASE_MAX_POINTS" env-description:"total metric row cap; oldest rows are evicted past this bound"`
}

// Server configures the HTTP listener and auth.
type Server struct {
	Port      uint   `yaml:"port" default:"8080" env:"SERVER_PORT" env-description:"listen port"`
	AuthKey   string `yaml:"auth_key" env:"HELIOS_AUTH_KEY" env-description:"shared bearer/API key; empty disables auth middleware"`
}

// Models configures the model manager (spec §4.5, §6.4).
type Models struct {
	Dir            string        `yaml:"dir" default:"./models" env:"MODELS_DIR" env-description:"local directory holding <name>/<version>/model.bin + metadata.json"`
	BlobEndpoint   string        `yaml:"blob_endpoint" env:"MODELS_BLOB_ENDPOINT" env-description:"optional minio/S3 endpoint to download missing model artifacts from"`
	BlobBucket     string        `yaml:"blob_bucket" env:"MODELS_BLOB_BUCKET" env-description:"bucket holding model artifacts"`
	BlobAccessKey  string        `yaml:"blob_access_key" env:"MODELS_BLOB_ACCESS_KEY"`
	BlobSecretKey  string        `yaml:"blob_secret_key" env:"MODELS_BLOB_SECRET_KEY"`
	CacheTTL       time.Duration `yaml:"cache_ttl" default:"300s" env-description:"prediction cache entry lifetime"`
	CooldownMins   int           `yaml:"cooldown_minutes" default:"15" env-description:"recommender per-workload cooldown"`
}

// Settings is the complete helios-server configuration.
type Settings struct {
	Logging  config.Logging `yaml:"logging"`
	Server   Server         `yaml:"server"`
	Database Database       `yaml:"database"`
	Models   Models         `yaml:"models"`
}

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
			return nil, fmt.Errorf("no config file %s: %w", cfgFile, err)
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
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (s *Settings) applyDefaults() {
	if s.Database.Path == "" {
		s.Database.Path = "./data/helios.db"
	}
	if s.Database.MaxPoints <= 0 {
		s.Database.MaxPoints = 100000
	}
	if s.Server.Port == 0 {
		s.Server.Port = 8080
	}
	if s.Models.Dir == "" {
		s.Models.Dir = "./models"
	}
	if s.Models.CacheTTL <= 0 {
		s.Models.CacheTTL = 300 * time.Second
	}
	if s.Models.CooldownMins <= 0 {
		s.Models.CooldownMins = 15
	}
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
