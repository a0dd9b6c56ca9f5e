// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"time"
)

// Source is the capability set every pluggable metrics producer satisfies.
// Implementations live under app/sources/<type>; app/sources holds the
// process-wide registry that maps a config's Type string to a constructor.
type Source interface {
	// Initialize prepares the source (auth, connection probing, defaults).
	// A non-nil error means the source is excluded from the active set;
	// this must never be fatal to the agent.
	Initialize(ctx context.Context) error

	// Collect runs exactly one poll and returns its outcome. Collect must
	// never panic or return an error from backend failures - those are
	// carried inside the CollectionResult instead.
	Collect(ctx context.Context) CollectionResult

	// HealthCheck reports whether the source's backend is currently
	// reachable, independent of whether a Collect has run recently.
	HealthCheck(ctx context.Context) bool

	// Close releases any resources (connections, file handles) held by the
	// source. Called once during agent shutdown.
	Close() error

	// IsEnabled reports the source's configured enabled flag.
	IsEnabled() bool

	// SourceType returns the registry type string this instance was built
	// from (e.g. "system", "prometheus").
	SourceType() string

	// Config returns the configuration this source was constructed with.
	Config() SourceConfig

	// SetIntervalOverride applies (or clears, with nil) a server-driven
	// collection_interval override for subsequent poller sleeps.
	SetIntervalOverride(interval *int)

	// Interval returns the duration the poller should currently sleep
	// between collections: the server-driven override when one is set,
	// else the statically configured interval.
	Interval() time.Duration
}

// SourceConstructor builds a new Source instance from its config. Returned
// by a source package's registration hook.
type SourceConstructor func(cfg SourceConfig) Source

// RequiredCredentialsFn enumerates the credential keys a source type needs
// in SourceConfig.Credentials (or empty if none). Mirrors the teacher's
// class-level get_required_credentials().
type RequiredCredentialsFn func() []string

// DefaultQueriesFn returns the default query/metric list a source type uses
// when its config omits one. Mirrors get_default_queries().
type DefaultQueriesFn func() []string
