// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"time"

	"github.com/helios-io/helios/app/types"
)

// MetricRow is the embedded backend's time-series row (spec §4.3 schema).
// DeploymentID/AgentID are indexed enrichments of the logical schema -
// the spec's labels JSON column alone would force a full scan per query;
// these columns let Query use an index while the labels are still stored
// verbatim for get_metric_names-style introspection.
type MetricRow struct {
	ID           uint             `gorm:"primaryKey;autoIncrement"`
	DeploymentID string           `gorm:"index"`
	AgentID      string           `gorm:"index"`
	Name         string           `gorm:"index;index:idx_metric_row_name_ts,priority:1"`
	Value        float64
	Timestamp    time.Time        `gorm:"index;index:idx_metric_row_name_ts,priority:2"`
	Kind         types.MetricKind
	Source       string
	Labels       types.StringMap `gorm:"type:text"`
}

func (MetricRow) TableName() string { return "metrics" }
