// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-io/helios/app/detector"
	"github.com/helios-io/helios/app/models"
)

func newManager(t *testing.T) *models.Manager {
	t.Helper()
	mgr, err := models.NewManager(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, mgr.Load(context.Background()))
	return mgr
}

func flatSeriesWithOutlier(n int, outlierIndex int, outlierValue float64) []detector.Sample {
	out := make([]detector.Sample, n)
	for i := range out {
		out[i] = detector.Sample{Timestamp: int64(i), Value: 50.0}
	}
	out[outlierIndex].Value = outlierValue
	return out
}

func TestDetector_SkipsMetricsBelowMinDataPoints(t *testing.T) {
	svc := detector.New(newManager(t))
	resp := svc.Detect(context.Background(), detector.Request{
		Metrics: map[string][]detector.Sample{
			"short_series": flatSeriesWithOutlier(5, 2, 999),
		},
		MinDataPoints: 12,
	})
	assert.Equal(t, 0, resp.Summary.MetricsScanned)
	assert.Empty(t, resp.Anomalies)
}

func TestDetector_FlagsObviousOutlier(t *testing.T) {
	svc := detector.New(newManager(t))
	resp := svc.Detect(context.Background(), detector.Request{
		Metrics: map[string][]detector.Sample{
			"cpu_utilization": flatSeriesWithOutlier(20, 10, 500),
		},
		ThresholdSigma: 2.0,
		MinDataPoints:  12,
	})
	require.Equal(t, 1, resp.Summary.MetricsScanned)
	require.NotEmpty(t, resp.Anomalies)
	assert.Equal(t, "cpu_utilization", resp.Anomalies[0].Metric)
	assert.Equal(t, 10, resp.Anomalies[0].Index)
}

func TestDetector_HealthyWhenNoAnomalies(t *testing.T) {
	svc := detector.New(newManager(t))
	flat := make([]detector.Sample, 20)
	for i := range flat {
		flat[i] = detector.Sample{Timestamp: int64(i), Value: 50.0}
	}
	resp := svc.Detect(context.Background(), detector.Request{
		Metrics: map[string][]detector.Sample{"cpu_utilization": flat},
	})
	assert.Equal(t, "healthy", resp.Summary.Status)
	assert.Empty(t, resp.Anomalies)
}

func TestDetector_SummaryEscalatesWithSeverity(t *testing.T) {
	svc := detector.New(newManager(t))
	resp := svc.Detect(context.Background(), detector.Request{
		Metrics: map[string][]detector.Sample{
			"memory_usage_bytes": flatSeriesWithOutlier(20, 5, 1_000_000),
		},
		ThresholdSigma: 1.0,
		MinDataPoints:  12,
	})
	require.NotEmpty(t, resp.Anomalies)
	assert.Contains(t, []string{"attention", "warning", "critical"}, resp.Summary.Status)
}
