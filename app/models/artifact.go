// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Metadata mirrors the sibling metadata.json next to every model.bin (spec
// §4.5 supplement, artifact layout `<models_dir>/<name>/<version>/`).
type Metadata struct {
	Name      string             `json:"name"`
	Version   string             `json:"version"`
	CreatedAt time.Time          `json:"created_at"`
	Framework string             `json:"framework"`
	Metrics   map[string]float64 `json:"metrics"`
}

// weights is the decoded contents of model.bin: a small set of trained
// coefficients driving this model's forecast/anomaly-scoring behavior.
// Real training is out of scope; these are produced by the (external,
// out-of-repo) offline training pipeline and simply read here.
type weights struct {
	Level           float64 `json:"level"`
	Trend           float64 `json:"trend"`
	SeasonalPeriod  int     `json:"seasonal_period"`
	Seasonal        []float64 `json:"seasonal"`
	ResidualAlpha   float64 `json:"residual_alpha"`
}

// Artifact is a forecast/anomaly model whose parameters were loaded from a
// trained model.bin + metadata.json pair on disk (spec §4.5). It backs both
// the "prophet" (seasonal decomposition) and "xgboost" (anomaly scoring)
// named models; they differ only in the weights/metadata loaded for them.
type Artifact struct {
	name    string
	version string
	meta    Metadata
	w       weights
}

// loadArtifact reads <dir>/<name>/<version>/{model.bin,metadata.json}.
func loadArtifact(dir, name, version string) (*Artifact, error) {
	base := filepath.Join(dir, name, version)

	metaBytes, err := os.ReadFile(filepath.Join(base, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	binBytes, err := os.ReadFile(filepath.Join(base, "model.bin"))
	if err != nil {
		return nil, fmt.Errorf("read model.bin: %w", err)
	}
	var w weights
	if err := json.Unmarshal(binBytes, &w); err != nil {
		return nil, fmt.Errorf("decode model.bin: %w", err)
	}
	if w.SeasonalPeriod <= 0 {
		w.SeasonalPeriod = 1
		w.Seasonal = []float64{0}
	}
	if w.ResidualAlpha <= 0 || w.ResidualAlpha > 1 {
		w.ResidualAlpha = 0.3
	}

	return &Artifact{name: name, version: version, meta: meta, w: w}, nil
}

func (a *Artifact) Name() string    { return a.name }
func (a *Artifact) Version() string { return a.version }
func (a *Artifact) Framework() string {
	if a.meta.Framework != "" {
		return a.meta.Framework
	}
	return a.name
}

// Predict extrapolates level + trend*i + seasonal[i%period] per step.
func (a *Artifact) Predict(metric string, periods int) []float64 {
	out := make([]float64, periods)
	period := len(a.w.Seasonal)
	if period == 0 {
		period = 1
	}
	for i := range out {
		seasonal := 0.0
		if period > 0 {
			seasonal = a.w.Seasonal[i%period]
		}
		out[i] = clamp(metric, a.w.Level+a.w.Trend*float64(i+1)+seasonal)
	}
	return out
}

func (a *Artifact) ConfidenceInterval(metric string, periods int, confidence float64) (lower, upper []float64) {
	values := a.Predict(metric, periods)
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

// PredictSeries fits an EWMA to observed values, giving the detector a
// model-backed "predicted" series for residual-based scoring (spec §4.5
// AnomalyDetectorService step 2). In practice only the model registered
// under the "xgboost" name is ever asked for this (see app/detector).
func (a *Artifact) PredictSeries(values []float64) []float64 {
	return ewma(values, a.w.ResidualAlpha)
}
