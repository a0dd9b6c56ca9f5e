// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import "time"

// SourceConfig is the declarative, YAML-sourced configuration for a single
// collector. It is immutable at runtime except for the server-driven
// interval override applied by the agent's command applier (see app/agent).
type SourceConfig struct {
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type"`
	Enabled    bool              `yaml:"enabled"`
	Interval   time.Duration     `yaml:"interval"`
	Endpoint   string            `yaml:"endpoint"`
	APIKey     string            `yaml:"api_key"`
	Credentials map[string]string `yaml:"credentials"`
	Queries    []string          `yaml:"queries"`
	Metrics    []string          `yaml:"metrics"`
	Namespaces []string          `yaml:"namespaces"`
	Labels     map[string]string `yaml:"labels"`
	Options    map[string]string `yaml:"options"`
}
