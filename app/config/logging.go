// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

// Logging is the common logging configuration block shared by both
// binaries.
type Logging struct {
	Level  string `yaml:"level" default:"info" env:"LOG_LEVEL" env-description:"logging level such as debug, info, warn, error"`
	Pretty bool   `yaml:"pretty" default:"false" env:"LOG_PRETTY" env-description:"use human-readable console output instead of JSON"`
}
