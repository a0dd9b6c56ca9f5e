// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package models implements the model manager and the three named models it
// owns (spec §4.5): baseline (moving-average + linear trend), prophet
// (seasonal decomposition), xgboost (anomaly scoring). Real ML training is
// out of scope (spec §1 Non-goals); each model instead reads a small set of
// trained coefficients from an on-disk artifact and extrapolates from them,
// falling back to a fixed in-memory equivalent when no artifact is present.
package models

import "strings"

// Forecaster is the common capability of forecast-producing models (spec
// §4.5 "Common capabilities across forecast models").
type Forecaster interface {
	// Predict returns periods values, one per 5-minute step starting at
	// the caller's reference time, clamped to >= 0 (and to [0,1] for
	// utilization-shaped metric names).
	Predict(metric string, periods int) []float64

	// ConfidenceInterval returns (lower, upper) bands around Predict's
	// output, widening linearly with horizon.
	ConfidenceInterval(metric string, periods int, confidence float64) (lower, upper []float64)
}

// SeriesPredictor is an optional capability: a model that can fit a smoothed
// series to observed values, enabling residual-based anomaly scoring (spec
// §4.5 AnomalyDetectorService step 2, "if model exposes predict(values)").
// Models that don't implement it force the gaussian |value-mean|/std path.
type SeriesPredictor interface {
	PredictSeries(values []float64) []float64
}

// Model is the full set of named models the manager loads; every model is
// at minimum a Forecaster, and may additionally implement SeriesPredictor.
type Model interface {
	Forecaster
	Name() string
	Framework() string
}

// Info is the /models endpoint's per-model summary (spec §6.2 ModelInfo).
type Info struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Framework string `json:"framework"`
	Loaded   bool   `json:"loaded"`
	Fallback bool   `json:"fallback"`
}

// clamp applies spec §4.5's output clamping rule: non-negative always, and
// bounded to [0,1] when the metric name looks like a utilization ratio.
func clamp(metric string, v float64) float64 {
	if v < 0 {
		v = 0
	}
	if isUtilization(metric) && v > 1 {
		v = 1
	}
	return v
}

func isUtilization(metric string) bool {
	return strings.Contains(strings.ToLower(metric), "utilization")
}
