// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package sources is the process-wide registry mapping a SourceConfig's
// Type string to a constructor (spec §4.2). Built-in source packages
// register themselves from an init() hook, mirroring the teacher's
// build-time-registry re-architecture of the original's decorator-based
// `register_source("name")` (spec §9).
package sources

import (
	"fmt"
	"sort"
	"sync"

	"github.com/helios-io/helios/app/types"
)

type registration struct {
	constructor types.SourceConstructor
	credentials types.RequiredCredentialsFn
	queries     types.DefaultQueriesFn
}

var (
	mu           sync.RWMutex
	registry = make(map[string]registration)
)

// Register adds a source type to the process-wide registry. Called from
// each source package's init(); panics on duplicate registration since
// that indicates a build-time programming error, not a runtime condition.
func Register(sourceType string, ctor types.SourceConstructor, credentials types.RequiredCredentialsFn, queries types.DefaultQueriesFn) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[sourceType]; exists {
		panic(fmt.Sprintf("sources: duplicate registration for type %q", sourceType))
	}
	registry[sourceType] = registration{constructor: ctor, credentials: credentials, queries: queries}
}

// Create builds a new Source instance for cfg.Type, or reports ok=false
// for an unknown type (spec §4.2: "create(config) returns a new instance
// or None for unknown types").
func Create(cfg types.SourceConfig) (types.Source, bool) {
	mu.RLock()
	defer mu.RUnlock()
	r, ok := registry[cfg.Type]
	if !ok {
		return nil, false
	}
	return r.constructor(cfg), true
}

// ListTypes enumerates every registered source type, sorted.
func ListTypes() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// RequiredCredentials returns the credential keys a source type needs, or
// nil for an unknown type.
func RequiredCredentials(sourceType string) []string {
	mu.RLock()
	defer mu.RUnlock()
	r, ok := registry[sourceType]
	if !ok || r.credentials == nil {
		return nil
	}
	return r.credentials()
}

// DefaultQueries returns the default query/metric list a source type uses
// when its config omits one, or nil for an unknown type.
func DefaultQueries(sourceType string) []string {
	mu.RLock()
	defer mu.RUnlock()
	r, ok := registry[sourceType]
	if !ok || r.queries == nil {
		return nil
	}
	return r.queries()
}
