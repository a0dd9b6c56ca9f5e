// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package predictor implements PredictorService (spec §4.5): cached,
// model-backed metric forecasting behind POST /predict and /predict/batch.
package predictor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/helios-io/helios/app/models"
	"github.com/helios-io/helios/app/types"
)

// Request is one POST /predict body (spec §6.2).
type Request struct {
	Metric            string  `json:"metric"`
	Periods           int     `json:"periods"`
	Model             string  `json:"model"`
	IncludeConfidence bool    `json:"include_confidence"`
	Confidence        float64 `json:"confidence"`
}

// Point is one forecasted step.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Lower     *float64  `json:"lower,omitempty"`
	Upper     *float64  `json:"upper,omitempty"`
}

// Metadata describes how a Response was produced.
type Metadata struct {
	Model      string        `json:"model"`
	CacheHit   bool          `json:"cache_hit"`
	LatencyMS  int64         `json:"latency_ms"`
}

// Response is the POST /predict 200 body.
type Response struct {
	Metric      string   `json:"metric"`
	Predictions []Point  `json:"predictions"`
	Metadata    Metadata `json:"metadata"`
}

const defaultCacheTTL = 300 * time.Second

type cacheEntry struct {
	resp   Response
	cached time.Time
}

// Service implements PredictorService. The prediction cache is a single
// process-wide map (spec §5 "Prediction cache is a single process-wide
// map ... entries expire on read when past cache_ttl"), grounded on the
// teacher's cache-with-mutex pattern in app/domain/metric_collector.go.
type Service struct {
	manager *models.Manager
	ttl     time.Duration
	clock   types.TimeProvider

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// New constructs a Service bound to the given model manager.
func New(manager *models.Manager, ttl time.Duration, clock types.TimeProvider) *Service {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Service{
		manager: manager,
		ttl:     ttl,
		clock:   clock,
		cache:   map[string]cacheEntry{},
	}
}

// Predict implements the five steps of spec §4.5 PredictorService.predict.
func (s *Service) Predict(ctx context.Context, req Request) (Response, error) {
	if req.Periods < 1 || req.Periods > 288 {
		return Response{}, fmt.Errorf("%w: periods must be in [1,288]", types.ErrValidation)
	}
	if req.Confidence <= 0 {
		req.Confidence = 0.95
	}

	modelName := req.Model
	if modelName == "" {
		modelName = models.Baseline_
	}

	key := fmt.Sprintf("%s:%d:%s", req.Metric, req.Periods, modelName)

	start := s.clock.GetCurrentTime()
	if cached, ok := s.lookup(key, start); ok {
		cached.Metadata.CacheHit = true
		return cached, nil
	}

	model, ok := s.manager.Get(modelName)
	if !ok {
		model, _ = s.manager.Get(models.Baseline_)
		modelName = models.Baseline_
	}

	values := model.Predict(req.Metric, req.Periods)
	var lowers, uppers []float64
	if req.IncludeConfidence {
		lowers, uppers = model.ConfidenceInterval(req.Metric, req.Periods, req.Confidence)
	}

	base := start.Add(5 * time.Minute)
	points := make([]Point, req.Periods)
	for i, v := range values {
		p := Point{Timestamp: base.Add(time.Duration(i) * 5 * time.Minute), Value: v}
		if req.IncludeConfidence {
			l, u := lowers[i], uppers[i]
			p.Lower, p.Upper = &l, &u
		}
		points[i] = p
	}

	resp := Response{
		Metric:      req.Metric,
		Predictions: points,
		Metadata: Metadata{
			Model:     modelName,
			CacheHit:  false,
			LatencyMS: s.clock.GetCurrentTime().Sub(start).Milliseconds(),
		},
	}

	s.store(key, resp, start)
	return resp, nil
}

// PredictBatch runs Predict once per requested metric, preserving order.
func (s *Service) PredictBatch(ctx context.Context, metrics []string, periods int, model string) ([]Response, error) {
	out := make([]Response, 0, len(metrics))
	for _, m := range metrics {
		resp, err := s.Predict(ctx, Request{Metric: m, Periods: periods, Model: model})
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *Service) lookup(key string, now time.Time) (Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache[key]
	if !ok || now.Sub(e.cached) >= s.ttl {
		return Response{}, false
	}
	return e.resp, true
}

func (s *Service) store(key string, resp Response, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cacheEntry{resp: resp, cached: now}
}
