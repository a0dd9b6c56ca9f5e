// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package memory is the process-local fallback storage backend, used only
// when the embedded sqlite backend cannot be opened (spec §9: "In-memory vs
// SQLite backend switch... both implement the same interface; construction
// chooses the embedded one and falls back on open failure"). It implements
// types.DeploymentStore, types.AgentStore, and types.MetricStore directly
// against Go maps/slices guarded by a single mutex each, mirroring the
// teacher's storage/tracker in-memory repository style.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/helios-io/helios/app/types"
)

// DeploymentStore is the in-memory types.DeploymentStore.
type DeploymentStore struct {
	mu   sync.RWMutex
	byID map[string]types.Deployment
}

func NewDeploymentStore() *DeploymentStore {
	return &DeploymentStore{byID: make(map[string]types.Deployment)}
}

func (s *DeploymentStore) Create(_ context.Context, d *types.Deployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Name == d.Name {
			return types.ErrDuplicateKey
		}
	}
	s.byID[d.ID] = *d
	return nil
}

func (s *DeploymentStore) Get(_ context.Context, id string) (*types.Deployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &d, nil
}

func (s *DeploymentStore) GetByName(_ context.Context, name string) (*types.Deployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.byID {
		if d.Name == name {
			cp := d
			return &cp, nil
		}
	}
	return nil, types.ErrNotFound
}

func (s *DeploymentStore) Update(_ context.Context, d *types.Deployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[d.ID]; !ok {
		return types.ErrNotFound
	}
	s.byID[d.ID] = *d
	return nil
}

func (s *DeploymentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return types.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *DeploymentStore) List(_ context.Context, environment string) ([]types.Deployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Deployment, 0, len(s.byID))
	for _, d := range s.byID {
		if environment != "" && string(d.Environment) != environment {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *DeploymentStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *DeploymentStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]types.Deployment)
	return nil
}

func (s *DeploymentStore) Tx(ctx context.Context, block func(context.Context) error) error {
	return block(ctx)
}

// AgentStore is the in-memory types.AgentStore.
type AgentStore struct {
	mu   sync.RWMutex
	byID map[string]types.Agent
}

func NewAgentStore() *AgentStore {
	return &AgentStore{byID: make(map[string]types.Agent)}
}

func (s *AgentStore) Create(_ context.Context, a *types.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[a.ID] = *a
	return nil
}

func (s *AgentStore) Get(_ context.Context, id string) (*types.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &a, nil
}

func (s *AgentStore) Update(_ context.Context, a *types.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[a.ID]; !ok {
		return types.ErrNotFound
	}
	s.byID[a.ID] = *a
	return nil
}

func (s *AgentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return types.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *AgentStore) ListByDeployment(_ context.Context, deploymentID string) ([]types.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Agent, 0)
	for _, a := range s.byID {
		if a.DeploymentID == deploymentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hostname < out[j].Hostname })
	return out, nil
}

func (s *AgentStore) Touch(_ context.Context, id string, seenAt time.Time, metrics []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return types.ErrNotFound
	}
	a.LastSeen = seenAt
	a.Status = types.StatusOnline
	if metrics != nil {
		a.Metrics = types.StringList(metrics)
		a.MetricsCount = len(metrics)
	}
	s.byID[id] = a
	return nil
}

func (s *AgentStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *AgentStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]types.Agent)
	return nil
}

func (s *AgentStore) Tx(ctx context.Context, block func(context.Context) error) error {
	return block(ctx)
}
