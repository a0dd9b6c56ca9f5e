// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package predictor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-io/helios/app/models"
	"github.com/helios-io/helios/app/predictor"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) GetCurrentTime() time.Time { return f.now }

func newManager(t *testing.T) *models.Manager {
	t.Helper()
	mgr, err := models.NewManager(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, mgr.Load(context.Background()))
	return mgr
}

func TestPredictor_RejectsOutOfRangePeriods(t *testing.T) {
	svc := predictor.New(newManager(t), time.Minute, &fakeClock{now: time.Now()})
	_, err := svc.Predict(context.Background(), predictor.Request{Metric: "cpu_utilization", Periods: 0})
	assert.Error(t, err)

	_, err = svc.Predict(context.Background(), predictor.Request{Metric: "cpu_utilization", Periods: 289})
	assert.Error(t, err)
}

func TestPredictor_FallsBackToBaselineForUnknownModel(t *testing.T) {
	svc := predictor.New(newManager(t), time.Minute, &fakeClock{now: time.Now()})
	resp, err := svc.Predict(context.Background(), predictor.Request{
		Metric:  "cpu_utilization",
		Periods: 6,
		Model:   "not-a-real-model",
	})
	require.NoError(t, err)
	assert.Equal(t, models.Baseline_, resp.Metadata.Model)
	assert.Len(t, resp.Predictions, 6)
}

func TestPredictor_CachesWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := predictor.New(newManager(t), time.Minute, clock)

	first, err := svc.Predict(context.Background(), predictor.Request{Metric: "cpu_utilization", Periods: 4})
	require.NoError(t, err)
	assert.False(t, first.Metadata.CacheHit)

	second, err := svc.Predict(context.Background(), predictor.Request{Metric: "cpu_utilization", Periods: 4})
	require.NoError(t, err)
	assert.True(t, second.Metadata.CacheHit)
	assert.Equal(t, first.Predictions, second.Predictions)
}

func TestPredictor_CacheExpiresPastTTL(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := predictor.New(newManager(t), time.Second, clock)

	_, err := svc.Predict(context.Background(), predictor.Request{Metric: "memory_usage_bytes", Periods: 3})
	require.NoError(t, err)

	clock.now = clock.now.Add(2 * time.Second)
	second, err := svc.Predict(context.Background(), predictor.Request{Metric: "memory_usage_bytes", Periods: 3})
	require.NoError(t, err)
	assert.False(t, second.Metadata.CacheHit)
}

func TestPredictor_IncludesConfidenceWhenRequested(t *testing.T) {
	svc := predictor.New(newManager(t), time.Minute, &fakeClock{now: time.Now()})
	resp, err := svc.Predict(context.Background(), predictor.Request{
		Metric:            "cpu_utilization",
		Periods:           3,
		IncludeConfidence: true,
	})
	require.NoError(t, err)
	for _, p := range resp.Predictions {
		require.NotNil(t, p.Lower)
		require.NotNil(t, p.Upper)
		assert.LessOrEqual(t, *p.Lower, p.Value)
		assert.GreaterOrEqual(t, *p.Upper, p.Value)
	}
}

func TestPredictor_BatchPreservesOrder(t *testing.T) {
	svc := predictor.New(newManager(t), time.Minute, &fakeClock{now: time.Now()})
	metrics := []string{"cpu_utilization", "memory_usage_bytes", "disk_utilization"}
	resp, err := svc.PredictBatch(context.Background(), metrics, 2, "")
	require.NoError(t, err)
	require.Len(t, resp, 3)
	for i, m := range metrics {
		assert.Equal(t, m, resp[i].Metric)
	}
}
