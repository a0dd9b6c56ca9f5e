// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recommender_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-io/helios/app/recommender"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) GetCurrentTime() time.Time { return f.now }

func TestRecommender_ScalesOutWhenOverThreshold(t *testing.T) {
	svc := recommender.New(10*time.Minute, &fakeClock{now: time.Now()})
	resp, err := svc.Recommend(context.Background(), recommender.Request{
		Workload:  "checkout",
		Namespace: "prod",
		CurrentState: recommender.CurrentState{
			Replicas: 4, MinReplicas: 1, MaxReplicas: 20, CurrentEst: 0.9,
		},
		Predictions: []float64{0.92, 0.95},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Actions)
	assert.Equal(t, "scale_out", resp.Actions[0].Type)
	assert.Greater(t, resp.Actions[0].TargetReplicas, 4)
}

func TestRecommender_ScalesInWhenUnderThreshold(t *testing.T) {
	svc := recommender.New(10*time.Minute, &fakeClock{now: time.Now()})
	resp, err := svc.Recommend(context.Background(), recommender.Request{
		Workload:  "checkout",
		Namespace: "prod",
		CurrentState: recommender.CurrentState{
			Replicas: 10, MinReplicas: 1, MaxReplicas: 20, CurrentEst: 0.1,
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Actions)
	assert.Equal(t, "scale_in", resp.Actions[0].Type)
	assert.Less(t, resp.Actions[0].TargetReplicas, 10)
	assert.Greater(t, resp.Actions[0].EstimatedSavings, 0.0)
}

func TestRecommender_NoActionWithinBand(t *testing.T) {
	svc := recommender.New(10*time.Minute, &fakeClock{now: time.Now()})
	resp, err := svc.Recommend(context.Background(), recommender.Request{
		Workload:  "checkout",
		Namespace: "prod",
		CurrentState: recommender.CurrentState{
			Replicas: 5, CurrentEst: 0.6,
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, "no_action", resp.Actions[0].Type)
}

func TestRecommender_CooldownSuppressesRepeatScaling(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := recommender.New(10*time.Minute, clock)

	req := recommender.Request{
		Workload:  "checkout",
		Namespace: "prod",
		CurrentState: recommender.CurrentState{
			Replicas: 4, MaxReplicas: 20, CurrentEst: 0.95,
		},
	}

	first, err := svc.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.CooldownActive)

	second, err := svc.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.CooldownActive)
	assert.Equal(t, "no_action", second.Actions[0].Type)

	clock.now = clock.now.Add(11 * time.Minute)
	third, err := svc.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, third.CooldownActive)
}

func TestRecommender_VerticalRightSizeWhenLimitFarExceedsRequest(t *testing.T) {
	svc := recommender.New(10*time.Minute, &fakeClock{now: time.Now()})
	resp, err := svc.Recommend(context.Background(), recommender.Request{
		Workload:  "checkout",
		Namespace: "prod",
		CurrentState: recommender.CurrentState{
			Replicas: 5, CurrentEst: 0.6,
			CPURequest: "100m", CPULimit: "500m",
		},
	})
	require.NoError(t, err)
	var found bool
	for _, a := range resp.Actions {
		if a.Type == "right_size" {
			found = true
		}
	}
	assert.True(t, found)
}
