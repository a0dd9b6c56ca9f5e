// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/helios-io/helios/app/types"
)

// IngestPipeline implements POST /api/v1/ingest (spec §4.4): persist the
// batch, auto-register the sending agent from its labels, then build the
// control-command response. Auto-registration failures are logged, never
// propagated to the caller (spec §4.4 step 3, §7 "background bookkeeping
// ... never fails a request").
type IngestPipeline struct {
	metrics  types.MetricStore
	registry *RegistryService
}

// NewIngestPipeline constructs an IngestPipeline over the metrics store and
// registry service.
func NewIngestPipeline(metrics types.MetricStore, registry *RegistryService) *IngestPipeline {
	return &IngestPipeline{metrics: metrics, registry: registry}
}

// Ingest processes one POST /api/v1/ingest body.
func (p *IngestPipeline) Ingest(ctx context.Context, req types.IngestRequest) (*types.IngestResponse, error) {
	deploymentID, agentID := labelsOf(req.Metrics)

	if err := p.metrics.Append(ctx, deploymentID, agentID, req.Metrics); err != nil {
		return nil, fmt.Errorf("ingest: store samples: %w", err)
	}

	resp := &types.IngestResponse{Received: len(req.Metrics)}

	if deploymentID == "" {
		return resp, nil
	}

	registered, err := p.autoRegister(ctx, deploymentID, req)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("deployment", deploymentID).Msg("auto-register from ingest labels failed")
		return resp, nil
	}

	cmds, err := p.registry.CommandsFor(registered.ID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("agent_id", registered.ID).Msg("failed to look up commands for agent")
		return resp, nil
	}
	resp.Commands = cmds
	return resp, nil
}

// autoRegister implements spec §4.3's auto-registration rule: it derives
// hostname/platform/agent_id from the first sample's labels and the
// request's agent_version, then upserts through RegisterAgent (which is
// itself idempotent on repeat agent_id).
func (p *IngestPipeline) autoRegister(ctx context.Context, deploymentID string, req types.IngestRequest) (*types.Agent, error) {
	first := req.Metrics[0]
	hostname := first.Labels["host"]
	if hostname == "" {
		hostname = first.Labels["hostname"]
	}
	if hostname == "" {
		hostname = "unknown"
	}
	platform := first.Labels["platform"]
	if platform == "" {
		platform = runtime.GOOS
	}

	names := make(map[string]struct{}, len(req.Metrics))
	for _, m := range req.Metrics {
		names[m.Name] = struct{}{}
	}
	metrics := make([]string, 0, len(names))
	for n := range names {
		metrics = append(metrics, n)
	}
	sort.Strings(metrics)

	return p.registry.RegisterAgent(ctx, deploymentID, RegisterRequest{
		AgentID:      fmt.Sprintf("%s-%s", truncate(hostname, 8), truncate(deploymentID, 4)),
		Hostname:     hostname,
		Platform:     platform,
		AgentVersion: req.AgentVersion,
		Metrics:      metrics,
	})
}

// labelsOf extracts the routing deployment/agent tag from the first
// sample's labels (spec §4.2: "this is the agent->server routing tag").
// Empty deploymentID signals ingest should store the batch without
// attempting auto-registration.
func labelsOf(samples []types.MetricSample) (deploymentID, agentID string) {
	if len(samples) == 0 {
		return "", ""
	}
	deploymentID = samples[0].Labels["deployment"]
	agentID = samples[0].Labels["agent_id"]
	return deploymentID, agentID
}
