// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package detector implements AnomalyDetectorService (spec §4.5): sigma-
// based anomaly scoring behind POST /detect.
package detector

import (
	"context"
	"math"
	"sort"

	"github.com/helios-io/helios/app/models"
)

const (
	minSigma = 1e-3

	severityLow      = "low"
	severityMedium   = "medium"
	severityHigh     = "high"
	severityCritical = "critical"
)

// Sample is one {timestamp, value} pair in a POST /detect request body.
type Sample struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Request is a POST /detect body (spec §6.2).
type Request struct {
	Metrics        map[string][]Sample `json:"metrics"`
	ThresholdSigma float64             `json:"threshold_sigma"`
	MinDataPoints  int                 `json:"min_data_points"`
}

// Anomaly is one flagged point (spec §4.5 step 2-3).
type Anomaly struct {
	Metric   string  `json:"metric"`
	Index    int     `json:"index"`
	Value    float64 `json:"value"`
	Score    float64 `json:"score"`
	Expected float64 `json:"expected"`
	Severity string  `json:"severity"`
}

// Summary rolls the anomalies up into an overall status (spec §4.5 step 5).
type Summary struct {
	Status        string `json:"status"`
	AnomalyCount  int    `json:"anomaly_count"`
	MetricsScanned int   `json:"metrics_scanned"`
}

// Response is the POST /detect 200 body.
type Response struct {
	Anomalies []Anomaly `json:"anomalies"`
	Summary   Summary   `json:"summary"`
}

// Service implements AnomalyDetectorService, scoring residuals against the
// model registered under models.XGBoost when it exposes SeriesPredictor,
// falling back to a plain gaussian |value-mean|/std otherwise (spec §4.5
// step 2: "if model exposes predict(values) ... else |value-mu|/sigma").
type Service struct {
	manager *models.Manager
}

// New constructs a Service bound to the given model manager.
func New(manager *models.Manager) *Service {
	return &Service{manager: manager}
}

// Detect implements the five steps of spec §4.5 AnomalyDetectorService.detect.
func (s *Service) Detect(ctx context.Context, req Request) Response {
	threshold := req.ThresholdSigma
	if threshold <= 0 {
		threshold = 3.0
	}
	minPoints := req.MinDataPoints
	if minPoints <= 0 {
		minPoints = 12
	}

	var scorer models.SeriesPredictor
	if m, ok := s.manager.Get(models.XGBoost); ok {
		scorer, _ = m.(models.SeriesPredictor)
	}

	names := make([]string, 0, len(req.Metrics))
	for name := range req.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var anomalies []Anomaly
	scanned := 0
	for _, name := range names {
		samples := req.Metrics[name]
		if len(samples) < minPoints {
			continue
		}
		scanned++

		values := make([]float64, len(samples))
		for i, sm := range samples {
			values[i] = sm.Value
		}

		mu := mean(values)
		sigma := stddev(values, mu)
		if sigma < minSigma {
			sigma = minSigma
		}

		var predicted []float64
		if scorer != nil {
			predicted = scorer.PredictSeries(values)
		}

		residualStd := sigma
		if predicted != nil {
			residualStd = stddev(residuals(values, predicted), 0)
			if residualStd < minSigma {
				residualStd = minSigma
			}
		}

		for i, v := range values {
			var score, expected float64
			if predicted != nil {
				expected = predicted[i]
				score = math.Abs(v-expected) / residualStd
			} else {
				expected = mu
				score = math.Abs(v-mu) / sigma
			}
			if score <= threshold {
				continue
			}
			anomalies = append(anomalies, Anomaly{
				Metric:   name,
				Index:    i,
				Value:    v,
				Score:    score,
				Expected: expected,
				Severity: severityFor(score),
			})
		}
	}

	return Response{
		Anomalies: anomalies,
		Summary:   summarize(anomalies, scanned),
	}
}

func severityFor(score float64) string {
	switch {
	case score >= 4.0:
		return severityCritical
	case score >= 3.0:
		return severityHigh
	case score >= 2.5:
		return severityMedium
	default:
		return severityLow
	}
}

func summarize(anomalies []Anomaly, scanned int) Summary {
	status := "healthy"
	worst := ""
	for _, a := range anomalies {
		if rank(a.Severity) > rank(worst) {
			worst = a.Severity
		}
	}
	switch worst {
	case severityCritical:
		status = "critical"
	case severityHigh:
		status = "warning"
	case severityMedium, severityLow:
		status = "attention"
	}
	return Summary{Status: status, AnomalyCount: len(anomalies), MetricsScanned: scanned}
}

func rank(severity string) int {
	switch severity {
	case severityCritical:
		return 4
	case severityHigh:
		return 3
	case severityMedium:
		return 2
	case severityLow:
		return 1
	default:
		return 0
	}
}

func residuals(values, predicted []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		out[i] = values[i] - predicted[i]
	}
	return out
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

func stddev(values []float64, mu float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - mu
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
