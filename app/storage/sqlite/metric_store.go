// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/helios-io/helios/app/storage/core"
	"github.com/helios-io/helios/app/types"
)

// MetricStore is the embedded-backend implementation of types.MetricStore.
// It enforces the `max_points` bound across all rows with FIFO eviction (spec
// §3 invariant, §4.3 add_metrics trim step) both inline on Append and via a
// periodic sweep, grounded on the teacher's rotateCachePeriodically
// background-goroutine pattern in app/domain/metric_collector.go.
type MetricStore struct {
	core.RawBaseRepoImpl
	maxPoints int
}

func NewMetricStore(ctx context.Context, db *gorm.DB, maxPoints int, sweepInterval time.Duration) *MetricStore {
	s := &MetricStore{RawBaseRepoImpl: core.NewRawBaseRepoImpl(db), maxPoints: maxPoints}
	go s.sweepPeriodically(ctx, sweepInterval)
	return s
}

func (s *MetricStore) Append(ctx context.Context, deploymentID, agentID string, samples []types.MetricSample) error {
	if len(samples) == 0 {
		return nil
	}
	rows := make([]MetricRow, 0, len(samples))
	for _, m := range samples {
		ts := m.Timestamp
		if ts.IsZero() {
			ts = core.DatabaseNow()
		}
		rows = append(rows, MetricRow{
			DeploymentID: deploymentID,
			AgentID:      agentID,
			Name:         m.Name,
			Value:        m.Value,
			Timestamp:    ts,
			Kind:         m.Kind,
			Source:       m.Source,
			Labels:       types.StringMap(m.Labels),
		})
	}
	if err := core.TranslateError(s.DB(ctx).Create(&rows).Error); err != nil {
		return err
	}
	return s.trim(ctx)
}

// trim deletes the globally-oldest rows past maxPoints, enforcing the
// bound across the whole table rather than per deployment (spec §3: "the
// metrics store never exceeds max_points rows"; ground truth is the
// original's sqlite_backend.py _trim, which counts and deletes against
// the full table, not scoped to one deployment).
func (s *MetricStore) trim(ctx context.Context) error {
	if s.maxPoints <= 0 {
		return nil
	}
	var count int64
	if err := s.DB(ctx).Model(&MetricRow{}).Count(&count).Error; err != nil {
		return core.TranslateError(err)
	}
	overflow := int(count) - s.maxPoints
	if overflow <= 0 {
		return nil
	}
	sub := s.DB(ctx).Model(&MetricRow{}).
		Select("id").
		Order("timestamp ASC").
		Limit(overflow)
	return core.TranslateError(s.DB(ctx).Where("id IN (?)", sub).Delete(&MetricRow{}).Error)
}

func (s *MetricStore) Query(ctx context.Context, q types.MetricQuery) ([]types.MetricSample, error) {
	db := s.DB(ctx).Model(&MetricRow{}).Where("deployment_id = ? AND name = ?", q.DeploymentID, q.MetricName)
	if q.AgentID != "" {
		db = db.Where("agent_id = ?", q.AgentID)
	}
	if !q.Since.IsZero() {
		db = db.Where("timestamp > ?", q.Since)
	}
	db = db.Order("timestamp ASC")
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	var rows []MetricRow
	if err := db.Find(&rows).Error; err != nil {
		return nil, core.TranslateError(err)
	}
	out := make([]types.MetricSample, len(rows))
	for i, r := range rows {
		out[i] = types.MetricSample{
			Name:      r.Name,
			Value:     r.Value,
			Timestamp: r.Timestamp,
			Kind:      r.Kind,
			Labels:    map[string]string(r.Labels),
			Source:    r.Source,
		}
	}
	return out, nil
}

func (s *MetricStore) SeriesNames(ctx context.Context, deploymentID string) ([]string, error) {
	var names []string
	err := s.DB(ctx).Model(&MetricRow{}).
		Where("deployment_id = ?", deploymentID).
		Distinct("name").Order("name").Pluck("name", &names).Error
	return names, core.TranslateError(err)
}

func (s *MetricStore) Count(ctx context.Context, deploymentID string) (int, error) {
	var count int64
	err := s.DB(ctx).Model(&MetricRow{}).Where("deployment_id = ?", deploymentID).Count(&count).Error
	return int(count), core.TranslateError(err)
}

func (s *MetricStore) sweepPeriodically(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.trim(ctx); err != nil {
				log.Ctx(ctx).Warn().Err(err).Msg("metric retention sweep: trim failed")
			}
		}
	}
}
