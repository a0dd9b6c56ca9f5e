// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package prometheus executes PromQL queries against a Prometheus-compatible
// HTTP API (spec §4.2).
package prometheus

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/helios-io/helios/app/sources"
	"github.com/helios-io/helios/app/types"
)

const sourceType = "prometheus"

// defaultPodQueries is the kubernetes pod-level default query set used
// when a config supplies none (spec §4.2).
var defaultPodQueries = []string{
	`sum(rate(container_cpu_usage_seconds_total[5m])) by (pod)`,
	`sum(container_memory_working_set_bytes) by (pod)`,
}

func init() {
	sources.Register(sourceType, New, requiredCredentials, func() []string { return defaultPodQueries })
}

func requiredCredentials() []string { return nil }

// Source executes a fixed set of PromQL queries on each poll.
type Source struct {
	sources.Base
	client promv1.API
}

func New(cfg types.SourceConfig) types.Source {
	return &Source{Base: sources.NewBase(sourceType, cfg)}
}

func (s *Source) Initialize(context.Context) error {
	cfg := s.Config()
	roundTripper := api.DefaultRoundTripper
	if cfg.APIKey != "" {
		roundTripper = &bearerRoundTripper{token: cfg.APIKey, next: api.DefaultRoundTripper}
	}
	client, err := api.NewClient(api.Config{Address: cfg.Endpoint, RoundTripper: roundTripper})
	if err != nil {
		return fmt.Errorf("prometheus client: %w", err)
	}
	s.client = promv1.NewAPI(client)
	return nil
}

func (s *Source) HealthCheck(ctx context.Context) bool {
	if s.client == nil {
		return false
	}
	_, err := s.client.Runtimeinfo(ctx)
	return err == nil
}

func (s *Source) Close() error { return nil }

func (s *Source) Collect(ctx context.Context) types.CollectionResult {
	start := time.Now()
	queries := s.Config().Queries
	if len(queries) == 0 {
		queries = defaultPodQueries
	}

	var samples []types.MetricSample
	for _, q := range queries {
		value, _, err := s.client.Query(ctx, q, time.Now())
		if err != nil {
			return types.ErrResult(sourceType, fmt.Errorf("query %q: %w", q, err), time.Since(start))
		}
		samples = append(samples, s.toSamples(q, value)...)
	}
	return types.OkResult(sourceType, samples, time.Since(start))
}

// toSamples parses vector and matrix result types; a matrix takes only its
// latest point per series (spec §4.2).
func (s *Source) toSamples(query string, value model.Value) []types.MetricSample {
	var out []types.MetricSample
	name := metricName(query)

	switch v := value.(type) {
	case model.Vector:
		for _, sample := range v {
			out = append(out, s.fromLabelSet(name, sample.Metric, float64(sample.Value), sample.Timestamp.Time()))
		}
	case model.Matrix:
		for _, series := range v {
			if len(series.Values) == 0 {
				continue
			}
			latest := series.Values[len(series.Values)-1]
			out = append(out, s.fromLabelSet(name, series.Metric, float64(latest.Value), latest.Timestamp.Time()))
		}
	}
	return out
}

func (s *Source) fromLabelSet(name string, metric model.Metric, value float64, ts time.Time) types.MetricSample {
	labels := make(map[string]string, len(metric))
	for k, v := range metric {
		labels[string(k)] = string(v)
	}
	if n, ok := metric[model.MetricNameLabel]; ok {
		name = string(n)
		delete(labels, string(model.MetricNameLabel))
	}
	labels = sources.MergeLabels(labels, s.Config().Labels)
	return types.MetricSample{
		Name:      name,
		Value:     value,
		Timestamp: ts.UTC(),
		Kind:      types.KindGauge,
		Labels:    labels,
		Source:    sourceType,
	}
}

// metricName derives a name from the query prefix when the result carries
// no __name__ label (spec §4.2: "metric name from __name__ label or
// derived from query prefix").
func metricName(query string) string {
	q := strings.TrimSpace(query)
	if i := strings.IndexAny(q, "({["); i > 0 {
		q = q[:i]
	}
	q = strings.TrimPrefix(q, "sum")
	q = strings.Trim(q, "_ ")
	if q == "" {
		return "prometheus_query_result"
	}
	return q
}

type bearerRoundTripper struct {
	token string
	next  http.RoundTripper
}

func (b *bearerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+b.token)
	return b.next.RoundTrip(cloned)
}
