// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"sync/atomic"
	"time"

	config "github.com/helios-io/helios/app/config/agent"
	"github.com/helios-io/helios/app/types"
)

// Base is embedded by every concrete source; it holds the config and the
// server-driven interval override, and implements the methods common to
// all sources (IsEnabled, Config, SourceType, SetIntervalOverride). This
// mirrors the teacher's BaseRepoImpl embedding pattern in app/storage/core
// applied to the Source capability set instead of repositories.
type Base struct {
	cfg        types.SourceConfig
	sourceType string
	override   atomic.Int64 // 0 means "no override"
}

func NewBase(sourceType string, cfg types.SourceConfig) Base {
	return Base{cfg: cfg, sourceType: sourceType}
}

func (b *Base) IsEnabled() bool            { return b.cfg.Enabled }
func (b *Base) SourceType() string         { return b.sourceType }
func (b *Base) Config() types.SourceConfig { return b.cfg }

func (b *Base) SetIntervalOverride(interval *int) {
	if interval == nil {
		b.override.Store(0)
		return
	}
	b.override.Store(int64(*interval))
}

// Interval returns the override when set, else the configured interval
// (falling back to the package default when that is unset), satisfying
// types.Source so pollLoop can read it directly.
func (b *Base) Interval() time.Duration {
	if v := b.override.Load(); v > 0 {
		return time.Duration(v) * time.Second
	}
	if b.cfg.Interval <= 0 {
		return config.DefaultCollectionInterval
	}
	return b.cfg.Interval
}

// MergeLabels merges the source's static config labels into a sample's
// label set, config labels taking precedence (spec §4.2: "All sources
// merge config-level static labels... into every emitted sample").
func MergeLabels(base map[string]string, cfg map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(cfg))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range cfg {
		out[k] = v
	}
	return out
}
