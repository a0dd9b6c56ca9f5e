// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the process-wide zerolog logger used by both
// binaries, and carries it on context.Context via zerolog's own
// log.Ctx/WithContext convention.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a logger built by NewLogger.
type Option func(*options)

type options struct {
	level   string
	pretty  bool
	version string
	out     *os.File
}

// WithLevel sets the minimum logged level (debug, info, warn, error).
// An unrecognized level falls back to info.
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

// WithPretty switches to a human-readable console writer instead of JSON,
// for local/interactive use.
func WithPretty(pretty bool) Option {
	return func(o *options) { o.pretty = pretty }
}

// WithVersion stamps every log line with a "version" field.
func WithVersion(version string) Option {
	return func(o *options) { o.version = version }
}

// NewLogger builds a zerolog.Logger writing to stderr. Binaries install it
// process-wide via zerolog.DefaultContextLogger and logger.WithContext(ctx).
func NewLogger(opts ...Option) (zerolog.Logger, error) {
	o := options{level: "info", out: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	lvl, err := zerolog.ParseLevel(o.level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var w interface{ Write([]byte) (int, error) } = o.out
	if o.pretty {
		w = zerolog.ConsoleWriter{Out: o.out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).Level(lvl).With().Timestamp()
	if o.version != "" {
		ctx = ctx.Str("version", o.version)
	}
	return ctx.Logger(), nil
}
