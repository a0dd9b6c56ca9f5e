// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package models_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-io/helios/app/models"
)

func TestManager_LoadFallsBackToBaselineWithoutArtifacts(t *testing.T) {
	dir := t.TempDir()
	mgr, err := models.NewManager(dir, nil)
	require.NoError(t, err)

	require.NoError(t, mgr.Load(context.Background()))

	ready := mgr.Ready()
	assert.True(t, ready[models.Baseline_])
	assert.True(t, ready[models.Prophet])
	assert.True(t, ready[models.XGBoost])

	info := mgr.Info()
	byName := map[string]models.Info{}
	for _, i := range info {
		byName[i.Name] = i
	}
	assert.True(t, byName[models.Prophet].Fallback)
	assert.True(t, byName[models.XGBoost].Fallback)
	assert.False(t, byName[models.Baseline_].Fallback)
}

func TestManager_GetReturnsRegisteredModels(t *testing.T) {
	dir := t.TempDir()
	mgr, err := models.NewManager(dir, nil)
	require.NoError(t, err)
	require.NoError(t, mgr.Load(context.Background()))

	m, ok := mgr.Get(models.Baseline_)
	require.True(t, ok)
	assert.Equal(t, "baseline", m.Name())

	_, ok = mgr.Get("does-not-exist")
	assert.False(t, ok)
}

func TestManager_LoadsArtifactWhenPresent(t *testing.T) {
	dir := t.TempDir()
	versionDir := filepath.Join(dir, models.Prophet, "v1")
	require.NoError(t, os.MkdirAll(versionDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(versionDir, "model.bin"), []byte(`{
		"level": 0.5,
		"trend": 0.01,
		"seasonal_period": 12,
		"seasonal": [0, 0.01, 0.02, 0.01, 0, -0.01, -0.02, -0.01, 0, 0.01, 0.02, 0.01],
		"residual_alpha": 0.3
	}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(versionDir, "metadata.json"), []byte(`{
		"name": "prophet",
		"version": "v1",
		"created_at": "2026-01-01T00:00:00Z",
		"framework": "prophet",
		"metrics": {"mape": 0.05}
	}`), 0o644))

	mgr, err := models.NewManager(dir, nil)
	require.NoError(t, err)
	require.NoError(t, mgr.Load(context.Background()))

	info := mgr.Info()
	for _, i := range info {
		if i.Name == models.Prophet {
			assert.True(t, i.Loaded)
			assert.False(t, i.Fallback)
			assert.Equal(t, "v1", i.Version)
		}
	}
}

func TestManager_WatchForHotSwapStopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	mgr, err := models.NewManager(dir, nil)
	require.NoError(t, err)
	require.NoError(t, mgr.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.WatchForHotSwap(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("WatchForHotSwap did not stop after context cancellation")
	}
}
