// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/helios-io/helios/app/types"
)

type metricRow struct {
	deploymentID string
	agentID      string
	sample       types.MetricSample
}

// MetricStore is the in-memory types.MetricStore. max_points is enforced
// globally across every deployment's rows, not per deployment, matching
// the embedded backend's table-wide trim (spec §3: "the metrics store
// never exceeds max_points rows").
type MetricStore struct {
	mu        sync.RWMutex
	maxPoints int
	rows      []metricRow
}

func NewMetricStore(maxPoints int) *MetricStore {
	return &MetricStore{maxPoints: maxPoints}
}

func (s *MetricStore) Append(_ context.Context, deploymentID, agentID string, samples []types.MetricSample) error {
	if len(samples) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range samples {
		s.rows = append(s.rows, metricRow{deploymentID: deploymentID, agentID: agentID, sample: m})
	}
	s.trimLocked()
	return nil
}

// trimLocked deletes the globally-oldest rows past maxPoints. Caller must
// hold s.mu.
func (s *MetricStore) trimLocked() {
	if s.maxPoints <= 0 || len(s.rows) <= s.maxPoints {
		return
	}
	sort.Slice(s.rows, func(i, j int) bool { return s.rows[i].sample.Timestamp.Before(s.rows[j].sample.Timestamp) })
	overflow := len(s.rows) - s.maxPoints
	s.rows = s.rows[overflow:]
}

func (s *MetricStore) Query(_ context.Context, q types.MetricQuery) ([]types.MetricSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.MetricSample
	for _, row := range s.rows {
		if row.deploymentID != q.DeploymentID || row.sample.Name != q.MetricName {
			continue
		}
		if q.AgentID != "" && row.agentID != q.AgentID {
			continue
		}
		if !q.Since.IsZero() && !row.sample.Timestamp.After(q.Since) {
			continue
		}
		out = append(out, row.sample)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MetricStore) SeriesNames(_ context.Context, deploymentID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, row := range s.rows {
		if row.deploymentID != deploymentID {
			continue
		}
		seen[row.sample.Name] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MetricStore) Count(_ context.Context, deploymentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, row := range s.rows {
		if row.deploymentID == deploymentID {
			count++
		}
	}
	return count, nil
}
