// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package datadog queries the Datadog metrics API (spec §4.2).
package datadog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV1"

	"github.com/helios-io/helios/app/sources"
	"github.com/helios-io/helios/app/types"
)

const sourceType = "datadog"

// siteBaseURLs is the per-site base URL table (spec §4.2).
var siteBaseURLs = map[string]string{
	"us1":    "datadoghq.com",
	"us3":    "us3.datadoghq.com",
	"us5":    "us5.datadoghq.com",
	"eu1":    "datadoghq.eu",
	"ap1":    "ap1.datadoghq.com",
	"gov":    "ddog-gov.com",
}

func init() {
	sources.Register(sourceType, New, requiredCredentials, defaultQueries)
}

func requiredCredentials() []string { return []string{"api_key", "app_key"} }

func defaultQueries() []string {
	return []string{"avg:system.cpu.user{*}", "avg:system.mem.used{*}"}
}

// Source queries the Datadog metrics API via its last point per series
// (spec §4.2).
type Source struct {
	sources.Base
	client *datadogV1.MetricsApi
	ctx    context.Context
}

func New(cfg types.SourceConfig) types.Source {
	return &Source{Base: sources.NewBase(sourceType, cfg)}
}

func (s *Source) Initialize(context.Context) error {
	cfg := s.Config()
	site := cfg.Options["site"]
	if site == "" {
		site = "us1"
	}
	base, ok := siteBaseURLs[site]
	if !ok {
		return fmt.Errorf("datadog: unknown site %q", site)
	}

	ddCfg := datadog.NewConfiguration()
	ddCfg.Host = "api." + base
	apiClient := datadog.NewAPIClient(ddCfg)
	s.client = datadogV1.NewMetricsApi(apiClient)
	s.ctx = datadog.NewDefaultContext(context.Background())
	s.ctx = context.WithValue(s.ctx, datadog.ContextAPIKeys, map[string]datadog.APIKey{
		"apiKeyAuth": {Key: cfg.Credentials["api_key"]},
		"appKeyAuth": {Key: cfg.Credentials["app_key"]},
	})
	return nil
}

func (s *Source) HealthCheck(ctx context.Context) bool {
	return s.client != nil
}

func (s *Source) Close() error { return nil }

func (s *Source) Collect(ctx context.Context) types.CollectionResult {
	start := time.Now()
	queries := s.Config().Queries
	if len(queries) == 0 {
		queries = defaultQueries()
	}

	now := time.Now()
	from := now.Add(-5 * time.Minute).Unix()
	to := now.Unix()

	var samples []types.MetricSample
	for _, q := range queries {
		resp, _, err := s.client.QueryMetrics(s.ctx, from, to, q)
		if err != nil {
			return types.ErrResult(sourceType, fmt.Errorf("query %q: %w", q, err), time.Since(start))
		}
		for _, series := range resp.GetSeries() {
			samples = append(samples, s.toSample(series)...)
		}
	}
	return types.OkResult(sourceType, samples, time.Since(start))
}

func (s *Source) toSample(series datadogV1.MetricsQueryMetadata) []types.MetricSample {
	points := series.GetPointlist()
	if len(points) == 0 {
		return nil
	}
	last := points[len(points)-1]
	if len(last) < 2 || last[1] == nil {
		return nil
	}

	name := normalizeName(series.GetMetric())
	labels := scopeToLabels(series.GetScope())
	labels = sources.MergeLabels(labels, s.Config().Labels)

	ts := time.Now().UTC()
	if last[0] != nil {
		ts = time.UnixMilli(int64(*last[0])).UTC()
	}

	return []types.MetricSample{{
		Name:      name,
		Value:     *last[1],
		Timestamp: ts,
		Kind:      types.KindGauge,
		Labels:    labels,
		Source:    sourceType,
	}}
}

// normalizeName strips the leading system|aws|azure|gcp namespace segment
// (spec §4.2).
func normalizeName(metric string) string {
	for _, prefix := range []string{"system.", "aws.", "azure.", "gcp."} {
		if strings.HasPrefix(metric, prefix) {
			return strings.TrimPrefix(metric, prefix)
		}
	}
	return metric
}

// scopeToLabels parses a Datadog scope string "k:v,k:v" into labels (spec
// §4.2).
func scopeToLabels(scope string) map[string]string {
	labels := make(map[string]string)
	for _, pair := range strings.Split(scope, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" || pair == "*" {
			continue
		}
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			continue
		}
		labels[kv[0]] = kv[1]
	}
	return labels
}
