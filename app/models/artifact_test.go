// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package models_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-io/helios/app/models"
)

func writeArtifact(t *testing.T, dir, name, version string) {
	t.Helper()
	versionDir := filepath.Join(dir, name, version)
	require.NoError(t, os.MkdirAll(versionDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(versionDir, "model.bin"), []byte(`{
		"level": 0.4,
		"trend": 0.005,
		"seasonal_period": 4,
		"seasonal": [0, 0.02, -0.02, 0.01],
		"residual_alpha": 0.4
	}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(versionDir, "metadata.json"), []byte(`{
		"name": "`+name+`",
		"version": "`+version+`",
		"created_at": "2026-01-01T00:00:00Z",
		"framework": "`+name+`",
		"metrics": {}
	}`), 0o644))
}

func TestArtifact_PredictAppliesTrendAndSeasonality(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, models.XGBoost, "v1")

	mgr, err := models.NewManager(dir, nil)
	require.NoError(t, err)
	require.NoError(t, mgr.Load(context.Background()))

	m, ok := mgr.Get(models.XGBoost)
	require.True(t, ok)
	assert.Equal(t, "xgboost", m.Framework())

	values := m.Predict("requests_per_second", 8)
	require.Len(t, values, 8)
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestArtifact_PredictSeriesAvailableOnXGBoost(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, models.XGBoost, "v1")

	mgr, err := models.NewManager(dir, nil)
	require.NoError(t, err)
	require.NoError(t, mgr.Load(context.Background()))

	m, ok := mgr.Get(models.XGBoost)
	require.True(t, ok)

	predictor, ok := m.(models.SeriesPredictor)
	require.True(t, ok, "xgboost artifact must implement SeriesPredictor")

	out := predictor.PredictSeries([]float64{1, 2, 3, 4, 5})
	require.Len(t, out, 5)
	assert.Equal(t, 1.0, out[0])
}

func TestBaseline_DoesNotImplementSeriesPredictor(t *testing.T) {
	_, ok := interface{}(models.NewBaseline()).(models.SeriesPredictor)
	assert.False(t, ok)
}
