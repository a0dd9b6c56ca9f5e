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

type fakeClock struct{ now time.Time }

func (f *fakeClock) GetCurrentTime() time.Time { return f.now }

func newRegistry(clock *fakeClock) *domain.RegistryService {
	return domain.NewRegistryService(memory.NewDeploymentStore(), memory.NewAgentStore(), memory.NewMetricStore(1000), clock, 30)
}

func TestRegistry_CreateDeploymentAssignsIDAndDefaultsEnvironment(t *testing.T) {
	svc := newRegistry(&fakeClock{now: time.Now()})
	d := &types.Deployment{Name: "prod-cluster"}
	require.NoError(t, svc.CreateDeployment(context.Background(), d))
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, types.EnvDevelopment, d.Environment)
}

func TestRegistry_CreateDeploymentRejectsBadName(t *testing.T) {
	svc := newRegistry(&fakeClock{now: time.Now()})
	err := svc.CreateDeployment(context.Background(), &types.Deployment{Name: "Not Valid!"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestRegistry_CreateDeploymentRejectsDuplicateName(t *testing.T) {
	svc := newRegistry(&fakeClock{now: time.Now()})
	require.NoError(t, svc.CreateDeployment(context.Background(), &types.Deployment{Name: "prod-cluster"}))
	err := svc.CreateDeployment(context.Background(), &types.Deployment{Name: "prod-cluster"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestRegistry_UpdateDeploymentRenamesAndExcludesSelfFromDuplicateCheck(t *testing.T) {
	svc := newRegistry(&fakeClock{now: time.Now()})
	d := &types.Deployment{Name: "prod-cluster"}
	require.NoError(t, svc.CreateDeployment(context.Background(), d))

	newName := "prod-cluster-renamed"
	updated, err := svc.UpdateDeployment(context.Background(), d.ID, domain.DeploymentPatch{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)

	// updating with its own unchanged name must not trip the duplicate check
	_, err = svc.UpdateDeployment(context.Background(), d.ID, domain.DeploymentPatch{Name: &newName})
	assert.NoError(t, err)
}

func TestRegistry_DeleteDeploymentCascadesAgents(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newRegistry(clock)
	d := &types.Deployment{Name: "prod-cluster"}
	require.NoError(t, svc.CreateDeployment(context.Background(), d))

	agent, err := svc.RegisterAgent(context.Background(), d.ID, domain.RegisterRequest{AgentID: "agent-1", Hostname: "host-1"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDeployment(context.Background(), d.ID))

	_, err = svc.GetAgent(context.Background(), agent.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = svc.GetDeployment(context.Background(), d.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRegistry_RegisterAgentAutoCreatesDeployment(t *testing.T) {
	svc := newRegistry(&fakeClock{now: time.Now()})
	agent, err := svc.RegisterAgent(context.Background(), "brand-new", domain.RegisterRequest{
		AgentID:  "agent-1",
		Hostname: "host-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, agent.DeploymentID)

	deployment, err := svc.GetDeployment(context.Background(), agent.DeploymentID)
	require.NoError(t, err)
	assert.Equal(t, "brand-new", deployment.Name)
	assert.Equal(t, types.EnvDevelopment, deployment.Environment)
}

func TestRegistry_RegisterAgentIsIdempotentOnAgentID(t *testing.T) {
	svc := newRegistry(&fakeClock{now: time.Now()})
	first, err := svc.RegisterAgent(context.Background(), "dep", domain.RegisterRequest{AgentID: "agent-1", Hostname: "host-1"})
	require.NoError(t, err)

	second, err := svc.RegisterAgent(context.Background(), "dep", domain.RegisterRequest{AgentID: "agent-1", Hostname: "host-1-renamed"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.RegisteredAt, second.RegisteredAt)
	assert.Equal(t, "host-1-renamed", second.Hostname)
}

func TestRegistry_ListAgentsDerivesOfflineStatus(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newRegistry(clock)
	agent, err := svc.RegisterAgent(context.Background(), "dep", domain.RegisterRequest{AgentID: "agent-1", Hostname: "host-1"})
	require.NoError(t, err)

	clock.now = clock.now.Add(10 * time.Minute)
	agents, err := svc.ListAgents(context.Background(), agent.DeploymentID)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, types.StatusOffline, agents[0].Status)
}

func TestRegistry_UpdateAgentConfigRejectsOutOfRangeInterval(t *testing.T) {
	svc := newRegistry(&fakeClock{now: time.Now()})
	agent, err := svc.RegisterAgent(context.Background(), "dep", domain.RegisterRequest{AgentID: "agent-1", Hostname: "host-1"})
	require.NoError(t, err)

	tooSmall := 1
	_, err = svc.UpdateAgentConfig(context.Background(), agent.ID, domain.AgentConfigPatch{CollectionInterval: &tooSmall})
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)

	tooBig := 10000
	_, err = svc.UpdateAgentConfig(context.Background(), agent.ID, domain.AgentConfigPatch{CollectionInterval: &tooBig})
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}

func TestRegistry_CommandsForReturnsNilWhenAtDefault(t *testing.T) {
	svc := newRegistry(&fakeClock{now: time.Now()})
	agent, err := svc.RegisterAgent(context.Background(), "dep", domain.RegisterRequest{AgentID: "agent-1", Hostname: "host-1"})
	require.NoError(t, err)

	cmds, err := svc.CommandsFor(agent.ID)
	require.NoError(t, err)
	assert.Nil(t, cmds)
}

func TestRegistry_CommandsForPopulatesWhenNonDefault(t *testing.T) {
	svc := newRegistry(&fakeClock{now: time.Now()})
	agent, err := svc.RegisterAgent(context.Background(), "dep", domain.RegisterRequest{AgentID: "agent-1", Hostname: "host-1"})
	require.NoError(t, err)

	paused := true
	_, err = svc.UpdateAgentConfig(context.Background(), agent.ID, domain.AgentConfigPatch{Paused: &paused})
	require.NoError(t, err)

	cmds, err := svc.CommandsFor(agent.ID)
	require.NoError(t, err)
	require.NotNil(t, cmds)
	require.NotNil(t, cmds.Paused)
	assert.True(t, *cmds.Paused)
}

func TestRegistry_GetDeploymentMetricsUnionsAndSorts(t *testing.T) {
	svc := newRegistry(&fakeClock{now: time.Now()})
	agentOne, err := svc.RegisterAgent(context.Background(), "dep", domain.RegisterRequest{
		AgentID: "agent-1", Hostname: "host-1", Metrics: []string{"cpu_utilization", "disk_utilization"},
	})
	require.NoError(t, err)
	_, err = svc.RegisterAgent(context.Background(), agentOne.DeploymentID, domain.RegisterRequest{
		AgentID: "agent-2", Hostname: "host-2", Metrics: []string{"memory_usage_bytes", "cpu_utilization"},
	})
	require.NoError(t, err)

	names, err := svc.GetDeploymentMetrics(context.Background(), agentOne.DeploymentID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cpu_utilization", "disk_utilization", "memory_usage_bytes"}, names)
}
