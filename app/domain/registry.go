// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/helios-io/helios/app/types"
)

var deploymentNamePattern = regexp.MustCompile(`^[a-z0-9-]{1,64}$`)

// RegistryService is the deployment/agent registry (spec §4.3): it owns
// status derivation, name validation, cascade deletes, and the auto-create
// / auto-register flows driven by ingest.
type RegistryService struct {
	deployments types.DeploymentStore
	agents      types.AgentStore
	metrics     types.MetricStore
	clock       types.TimeProvider

	// defaultCollectionInterval is the server-wide default used to decide
	// whether an agent's config has drifted enough to warrant a commands
	// block on ingest (spec §4.4 step 4).
	defaultCollectionInterval int
}

// NewRegistryService constructs a RegistryService over the given stores.
func NewRegistryService(deployments types.DeploymentStore, agents types.AgentStore, metrics types.MetricStore, clock types.TimeProvider, defaultCollectionInterval int) *RegistryService {
	return &RegistryService{
		deployments:                deployments,
		agents:                     agents,
		metrics:                    metrics,
		clock:                      clock,
		defaultCollectionInterval:  defaultCollectionInterval,
	}
}

// ListDeployments returns every deployment (optionally filtered by
// environment) with computed agents_count/agents_online/metrics_count and
// freshly-derived agent statuses.
func (s *RegistryService) ListDeployments(ctx context.Context, environment string) ([]types.Deployment, error) {
	deployments, err := s.deployments.List(ctx, environment)
	if err != nil {
		return nil, err
	}
	out := make([]types.Deployment, len(deployments))
	for i, d := range deployments {
		computed, err := s.withComputedFields(ctx, d)
		if err != nil {
			return nil, err
		}
		out[i] = computed
	}
	return out, nil
}

// GetDeployment returns one deployment with computed fields, or
// types.ErrNotFound.
func (s *RegistryService) GetDeployment(ctx context.Context, id string) (*types.Deployment, error) {
	d, err := s.deployments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	computed, err := s.withComputedFields(ctx, *d)
	if err != nil {
		return nil, err
	}
	return &computed, nil
}

func (s *RegistryService) withComputedFields(ctx context.Context, d types.Deployment) (types.Deployment, error) {
	agents, err := s.agents.ListByDeployment(ctx, d.ID)
	if err != nil {
		return d, err
	}
	online := 0
	now := s.clock.GetCurrentTime()
	for _, a := range agents {
		if types.DeriveStatus(now.Sub(a.LastSeen), a.Paused) == types.StatusOnline {
			online++
		}
	}
	count, err := s.metrics.Count(ctx, d.ID)
	if err != nil {
		return d, err
	}
	d.AgentsCount = len(agents)
	d.AgentsOnline = online
	d.MetricsCount = count
	return d, nil
}

// CreateDeployment validates the name, assigns a stable 8-char id, and
// rejects duplicates (spec §3 Deployment invariants).
func (s *RegistryService) CreateDeployment(ctx context.Context, d *types.Deployment) error {
	if !deploymentNamePattern.MatchString(d.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, d.Name)
	}
	if _, err := s.deployments.GetByName(ctx, d.Name); err == nil {
		return ErrDuplicateName
	} else if !errors.Is(err, types.ErrNotFound) {
		return err
	}

	now := s.clock.GetCurrentTime()
	d.ID = shortSlug()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.Environment == "" {
		d.Environment = types.EnvDevelopment
	}
	return s.deployments.Create(ctx, d)
}

// DeploymentPatch carries the mutable subset of Deployment accepted by
// PATCH /api/deployments/{id}.
type DeploymentPatch struct {
	Name        *string
	Description *string
	Environment *types.Environment
}

// UpdateDeployment applies patch to the deployment named by id, bumping
// updated_at. The duplicate-name check excludes the record being updated.
func (s *RegistryService) UpdateDeployment(ctx context.Context, id string, patch DeploymentPatch) (*types.Deployment, error) {
	d, err := s.deployments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil && *patch.Name != d.Name {
		if !deploymentNamePattern.MatchString(*patch.Name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, *patch.Name)
		}
		if existing, err := s.deployments.GetByName(ctx, *patch.Name); err == nil && existing.ID != id {
			return nil, ErrDuplicateName
		} else if err != nil && !errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		d.Name = *patch.Name
	}
	if patch.Description != nil {
		d.Description = *patch.Description
	}
	if patch.Environment != nil {
		d.Environment = *patch.Environment
	}
	d.UpdatedAt = s.clock.GetCurrentTime()

	if err := s.deployments.Update(ctx, d); err != nil {
		return nil, err
	}
	return s.GetDeployment(ctx, id)
}

// DeleteDeployment removes a deployment and, manually for portability
// across backends, every agent belonging to it (spec §3: "deleting the
// deployment deletes its agents").
func (s *RegistryService) DeleteDeployment(ctx context.Context, id string) error {
	agents, err := s.agents.ListByDeployment(ctx, id)
	if err != nil {
		return err
	}
	for _, a := range agents {
		if err := s.agents.Delete(ctx, a.ID); err != nil && !errors.Is(err, types.ErrNotFound) {
			return err
		}
	}
	return s.deployments.Delete(ctx, id)
}

// ListAgents returns every agent of a deployment with freshly-derived
// status.
func (s *RegistryService) ListAgents(ctx context.Context, deploymentID string) ([]types.Agent, error) {
	agents, err := s.agents.ListByDeployment(ctx, deploymentID)
	if err != nil {
		return nil, err
	}
	now := s.clock.GetCurrentTime()
	for i := range agents {
		agents[i].Status = types.DeriveStatus(now.Sub(agents[i].LastSeen), agents[i].Paused)
	}
	return agents, nil
}

// GetAgent returns a single agent with freshly-derived status.
func (s *RegistryService) GetAgent(ctx context.Context, id string) (*types.Agent, error) {
	a, err := s.agents.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Status = types.DeriveStatus(s.clock.GetCurrentTime().Sub(a.LastSeen), a.Paused)
	return a, nil
}

// DeleteAgent removes a single agent.
func (s *RegistryService) DeleteAgent(ctx context.Context, id string) error {
	return s.agents.Delete(ctx, id)
}

// RegisterRequest is the body of POST /api/deployments/{id}/agents/register
// and the shape the ingest auto-register flow builds internally (spec
// §4.3 register()).
type RegisterRequest struct {
	AgentID      string   `json:"agent_id"`
	Hostname     string   `json:"hostname"`
	Platform     string   `json:"platform"`
	AgentVersion string   `json:"agent_version"`
	Metrics      []string `json:"metrics"`
	Location     string   `json:"location,omitempty"`
	Region       string   `json:"region,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	IPAddress    string   `json:"ip_address,omitempty"`
}

// RegisterAgent implements spec §4.3 register(): auto-creates a
// same-named development deployment if deploymentID is unknown, updates an
// existing agent's mutable fields and resets its liveness if AgentID
// already exists, else inserts a new row with a generated id. It is
// idempotent: re-registering with the same AgentID never changes the row's
// id or registered_at.
func (s *RegistryService) RegisterAgent(ctx context.Context, deploymentID string, req RegisterRequest) (*types.Agent, error) {
	deploymentID, err := s.ensureDeployment(ctx, deploymentID)
	if err != nil {
		return nil, err
	}

	now := s.clock.GetCurrentTime()

	if req.AgentID != "" {
		if existing, err := s.agents.Get(ctx, req.AgentID); err == nil {
			existing.DeploymentID = deploymentID
			existing.Hostname = orDefault(req.Hostname, existing.Hostname)
			existing.Platform = orDefault(req.Platform, existing.Platform)
			existing.AgentVersion = orDefault(req.AgentVersion, existing.AgentVersion)
			if req.Metrics != nil {
				existing.Metrics = types.StringList(req.Metrics)
				existing.MetricsCount = len(req.Metrics)
			}
			existing.Location = orDefault(req.Location, existing.Location)
			existing.Region = orDefault(req.Region, existing.Region)
			if req.Latitude != nil {
				existing.Latitude = req.Latitude
			}
			if req.Longitude != nil {
				existing.Longitude = req.Longitude
			}
			existing.IPAddress = orDefault(req.IPAddress, existing.IPAddress)
			existing.Status = types.StatusOnline
			existing.LastSeen = now
			if err := s.agents.Update(ctx, existing); err != nil {
				return nil, err
			}
			return existing, nil
		} else if !errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
	}

	id := req.AgentID
	if id == "" {
		id = fmt.Sprintf("%s-%s", truncate(req.Hostname, 8), randomHex(2))
	}
	a := &types.Agent{
		ID:                 id,
		DeploymentID:       deploymentID,
		Hostname:           req.Hostname,
		Platform:           req.Platform,
		AgentVersion:       req.AgentVersion,
		Status:             types.StatusOnline,
		LastSeen:           now,
		RegisteredAt:       now,
		CollectionInterval: 0,
		Metrics:            types.StringList(req.Metrics),
		MetricsCount:       len(req.Metrics),
		Location:           req.Location,
		Region:             req.Region,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		IPAddress:          req.IPAddress,
	}
	if err := s.agents.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ensureDeployment resolves deploymentID to an id, auto-creating a
// same-named development deployment when it doesn't already exist (spec
// §4.3 register(): "if deployment_id does not exist, auto-create a
// same-named deployment (development)").
func (s *RegistryService) ensureDeployment(ctx context.Context, deploymentID string) (string, error) {
	if _, err := s.deployments.Get(ctx, deploymentID); err == nil {
		return deploymentID, nil
	} else if !errors.Is(err, types.ErrNotFound) {
		return "", err
	}

	// deploymentID doubles as the name for auto-created deployments and is
	// used verbatim as that name.
	name := deploymentID
	if existing, err := s.deployments.GetByName(ctx, name); err == nil {
		return existing.ID, nil
	} else if !errors.Is(err, types.ErrNotFound) {
		return "", err
	}

	now := s.clock.GetCurrentTime()
	d := &types.Deployment{
		ID:          deploymentSlugFor(deploymentID),
		Name:        name,
		Environment: types.EnvDevelopment,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.deployments.Create(ctx, d); err != nil {
		if errors.Is(err, types.ErrDuplicateKey) {
			if existing, getErr := s.deployments.GetByName(ctx, name); getErr == nil {
				return existing.ID, nil
			}
		}
		return "", err
	}
	return d.ID, nil
}

// Heartbeat implements spec §4.3 heartbeat(): update last_seen, status, and
// metrics_count, replacing the metric name list when non-empty.
func (s *RegistryService) Heartbeat(ctx context.Context, agentID string, metrics []string) error {
	return s.agents.Touch(ctx, agentID, s.clock.GetCurrentTime(), metrics)
}

// AgentConfigPatch carries the mutable subset of AgentConfig accepted by
// the control API (spec §4.3 update_config()).
type AgentConfigPatch struct {
	Paused             *bool `json:"paused"`
	CollectionInterval *int  `json:"collection_interval"`
}

// UpdateAgentConfig partially mutates an agent's control fields.
// CollectionInterval must fall in [5, 3600] (spec §8 boundary behavior).
func (s *RegistryService) UpdateAgentConfig(ctx context.Context, agentID string, patch AgentConfigPatch) (*types.Agent, error) {
	a, err := s.agents.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if patch.Paused != nil {
		a.Paused = *patch.Paused
	}
	if patch.CollectionInterval != nil {
		if *patch.CollectionInterval < 5 || *patch.CollectionInterval > 3600 {
			return nil, ErrInvalidInterval
		}
		a.CollectionInterval = *patch.CollectionInterval
	}
	if err := s.agents.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetAgentConfig returns the control-plane config read by the ingest
// pipeline's command emitter (spec §4.3 get_config()).
func (s *RegistryService) GetAgentConfig(ctx context.Context, agentID string) (*types.AgentConfig, error) {
	a, err := s.agents.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return &types.AgentConfig{Paused: a.Paused, CollectionInterval: a.CollectionInterval}, nil
}

// CommandsFor builds the ingest response's commands block from an agent's
// current config, returning nil when it matches the server default (spec
// §4.4 step 4: "populated ... when non-default").
func (s *RegistryService) CommandsFor(agentID string) (*types.Commands, error) {
	cfg, err := s.GetAgentConfig(context.Background(), agentID)
	if err != nil {
		return nil, err
	}
	if !cfg.Paused && (cfg.CollectionInterval == 0 || cfg.CollectionInterval == s.defaultCollectionInterval) {
		return nil, nil
	}
	cmd := &types.Commands{}
	if cfg.Paused {
		paused := true
		cmd.Paused = &paused
	}
	if cfg.CollectionInterval != 0 && cfg.CollectionInterval != s.defaultCollectionInterval {
		interval := cfg.CollectionInterval
		cmd.CollectionInterval = &interval
	}
	return cmd, nil
}

// GetDeploymentMetrics returns the union of metric names advertised by a
// deployment's agents, sorted (spec §4.3 get_deployment_metrics()).
func (s *RegistryService) GetDeploymentMetrics(ctx context.Context, deploymentID string) ([]string, error) {
	agents, err := s.agents.ListByDeployment(ctx, deploymentID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, a := range agents {
		for _, m := range a.Metrics {
			seen[m] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func randomHex(bytes int) string {
	id := uuid.New()
	h := strings.ReplaceAll(id.String(), "-", "")
	if 2*bytes > len(h) {
		return h
	}
	return h[:2*bytes]
}

func shortSlug() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// deploymentSlugFor derives the id for an auto-created deployment;
// uniqueness is enforced by the store (duplicate name retried via
// GetByName above), so the name itself need not influence the id.
func deploymentSlugFor(string) string {
	return shortSlug()
}
