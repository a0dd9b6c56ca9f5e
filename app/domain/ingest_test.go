// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-io/helios/app/domain"
	"github.com/helios-io/helios/app/storage/memory"
	"github.com/helios-io/helios/app/types"
)

func newPipeline(clock *fakeClock) (*domain.IngestPipeline, *domain.RegistryService) {
	metrics := memory.NewMetricStore(1000)
	registry := domain.NewRegistryService(memory.NewDeploymentStore(), memory.NewAgentStore(), metrics, clock, 30)
	return domain.NewIngestPipeline(metrics, registry), registry
}

func TestIngest_StoresSamplesWithoutLabelsAndSkipsAutoRegister(t *testing.T) {
	pipeline, _ := newPipeline(&fakeClock{now: time.Now()})
	resp, err := pipeline.Ingest(context.Background(), types.IngestRequest{
		Metrics: []types.MetricSample{
			{Name: "cpu_utilization", Value: 0.4, Timestamp: time.Now()},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Received)
	assert.Nil(t, resp.Commands)
}

func TestIngest_AutoRegistersAgentFromLabels(t *testing.T) {
	pipeline, registry := newPipeline(&fakeClock{now: time.Now()})
	resp, err := pipeline.Ingest(context.Background(), types.IngestRequest{
		AgentVersion: "1.2.3",
		Metrics: []types.MetricSample{
			{
				Name:      "cpu_utilization",
				Value:     0.4,
				Timestamp: time.Now(),
				Labels:    map[string]string{"deployment": "edge-fleet", "host": "node-7"},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Received)

	deployment, err := registry.GetDeployment(context.Background(), mustDeploymentIDByName(t, registry, "edge-fleet"))
	require.NoError(t, err)
	assert.Equal(t, 1, deployment.AgentsCount)
}

func TestIngest_PopulatesCommandsWhenAgentConfigNonDefault(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	pipeline, registry := newPipeline(clock)

	_, err := pipeline.Ingest(context.Background(), types.IngestRequest{
		Metrics: []types.MetricSample{
			{
				Name:      "cpu_utilization",
				Value:     0.4,
				Timestamp: time.Now(),
				Labels:    map[string]string{"deployment": "edge-fleet", "host": "node-7"},
			},
		},
	})
	require.NoError(t, err)

	deploymentID := mustDeploymentIDByName(t, registry, "edge-fleet")
	agents, err := registry.ListAgents(context.Background(), deploymentID)
	require.NoError(t, err)
	require.Len(t, agents, 1)

	paused := true
	_, err = registry.UpdateAgentConfig(context.Background(), agents[0].ID, domainAgentConfigPatch(paused))
	require.NoError(t, err)

	resp, err := pipeline.Ingest(context.Background(), types.IngestRequest{
		Metrics: []types.MetricSample{
			{
				Name:      "cpu_utilization",
				Value:     0.5,
				Timestamp: time.Now(),
				Labels:    map[string]string{"deployment": "edge-fleet", "host": "node-7"},
			},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Commands)
	require.NotNil(t, resp.Commands.Paused)
	assert.True(t, *resp.Commands.Paused)
}

func domainAgentConfigPatch(paused bool) domain.AgentConfigPatch {
	return domain.AgentConfigPatch{Paused: &paused}
}

func mustDeploymentIDByName(t *testing.T, registry *domain.RegistryService, name string) string {
	t.Helper()
	deployments, err := registry.ListDeployments(context.Background(), "")
	require.NoError(t, err)
	for _, d := range deployments {
		if d.Name == name {
			return d.ID
		}
	}
	t.Fatalf("no deployment named %q", name)
	return ""
}
