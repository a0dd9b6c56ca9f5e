// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-io/helios/app/models"
)

func TestBaseline_PredictIsDeterministic(t *testing.T) {
	b := models.NewBaseline()
	first := b.Predict("cpu_utilization", 12)
	second := b.Predict("cpu_utilization", 12)
	require.Equal(t, first, second)
}

func TestBaseline_PredictDiffersAcrossMetrics(t *testing.T) {
	b := models.NewBaseline()
	a := b.Predict("cpu_utilization", 6)
	c := b.Predict("memory_usage_bytes", 6)
	assert.NotEqual(t, a, c)
}

func TestBaseline_ClampsUtilizationToUnitInterval(t *testing.T) {
	b := models.NewBaseline()
	values := b.Predict("disk_utilization", 50)
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestBaseline_NonUtilizationOnlyClampsNonNegative(t *testing.T) {
	b := models.NewBaseline()
	values := b.Predict("network_bytes_sent", 50)
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestBaseline_ConfidenceIntervalBracketsPrediction(t *testing.T) {
	b := models.NewBaseline()
	values := b.Predict("cpu_utilization", 10)
	lower, upper := b.ConfidenceInterval("cpu_utilization", 10, 0.95)
	require.Len(t, lower, 10)
	require.Len(t, upper, 10)
	for i, v := range values {
		assert.LessOrEqual(t, lower[i], v)
		assert.GreaterOrEqual(t, upper[i], v)
	}
}

func TestBaseline_ConfidenceIntervalWidensWithHorizon(t *testing.T) {
	b := models.NewBaseline()
	lower, upper := b.ConfidenceInterval("memory_usage_bytes", 5, 0.80)
	firstWidth := upper[0] - lower[0]
	lastWidth := upper[4] - lower[4]
	assert.Greater(t, lastWidth, firstWidth)
}

func TestBaseline_NameAndFramework(t *testing.T) {
	b := models.NewBaseline()
	assert.Equal(t, "baseline", b.Name())
	assert.Equal(t, "baseline", b.Framework())
}
