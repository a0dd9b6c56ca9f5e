// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package cloudwatch queries AWS CloudWatch metric statistics (spec §4.2).
package cloudwatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/helios-io/helios/app/sources"
	"github.com/helios-io/helios/app/types"
)

const sourceType = "cloudwatch"

func init() {
	sources.Register(sourceType, New, requiredCredentials, defaultQueries)
}

func requiredCredentials() []string { return []string{"access_key_id", "secret_access_key"} }

func defaultQueries() []string {
	return []string{"AWS/EC2/CPUUtilization"}
}

// metricSpec is one parsed "Namespace/MetricName[:Dim=Val,...]" query
// string (spec §4.2).
type metricSpec struct {
	namespace  string
	metricName string
	dimensions []cwtypes.Dimension
}

func parseSpec(spec string) (metricSpec, error) {
	main, dimPart, _ := strings.Cut(spec, ":")
	idx := strings.LastIndex(main, "/")
	if idx <= 0 {
		return metricSpec{}, fmt.Errorf("cloudwatch: malformed metric spec %q", spec)
	}
	ms := metricSpec{namespace: main[:idx], metricName: main[idx+1:]}
	if dimPart != "" {
		for _, pair := range strings.Split(dimPart, ",") {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) != 2 {
				continue
			}
			ms.dimensions = append(ms.dimensions, cwtypes.Dimension{Name: &kv[0], Value: &kv[1]})
		}
	}
	return ms, nil
}

// Source queries GetMetricStatistics for Average over a lookback window.
type Source struct {
	sources.Base
	client *cloudwatch.Client
}

func New(cfg types.SourceConfig) types.Source {
	return &Source{Base: sources.NewBase(sourceType, cfg)}
}

func (s *Source) Initialize(ctx context.Context) error {
	cfg := s.Config()
	region := cfg.Options["region"]
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return fmt.Errorf("cloudwatch: load aws config: %w", err)
	}
	s.client = cloudwatch.NewFromConfig(awsCfg)
	return nil
}

func (s *Source) HealthCheck(context.Context) bool { return s.client != nil }

func (s *Source) Close() error { return nil }

func (s *Source) Collect(ctx context.Context) types.CollectionResult {
	start := time.Now()
	queries := s.Config().Queries
	if len(queries) == 0 {
		queries = defaultQueries()
	}

	now := time.Now()
	from := now.Add(-10 * time.Minute)
	period := int32(300)

	var samples []types.MetricSample
	for _, q := range queries {
		spec, err := parseSpec(q)
		if err != nil {
			return types.ErrResult(sourceType, err, time.Since(start))
		}

		out, err := s.client.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
			Namespace:  &spec.namespace,
			MetricName: &spec.metricName,
			Dimensions: spec.dimensions,
			StartTime:  &from,
			EndTime:    &now,
			Period:     &period,
			Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
		})
		if err != nil {
			return types.ErrResult(sourceType, fmt.Errorf("query %q: %w", q, err), time.Since(start))
		}
		samples = append(samples, s.toSamples(spec, out.Datapoints)...)
	}
	return types.OkResult(sourceType, samples, time.Since(start))
}

func (s *Source) toSamples(spec metricSpec, points []cwtypes.Datapoint) []types.MetricSample {
	if len(points) == 0 {
		return nil
	}
	latest := points[0]
	for _, p := range points {
		if p.Timestamp != nil && latest.Timestamp != nil && p.Timestamp.After(*latest.Timestamp) {
			latest = p
		}
	}
	if latest.Average == nil {
		return nil
	}

	labels := make(map[string]string, len(spec.dimensions))
	for _, d := range spec.dimensions {
		if d.Name != nil && d.Value != nil {
			labels[*d.Name] = *d.Value
		}
	}
	labels = sources.MergeLabels(labels, s.Config().Labels)

	ts := time.Now().UTC()
	if latest.Timestamp != nil {
		ts = latest.Timestamp.UTC()
	}

	return []types.MetricSample{{
		Name:      normalizeName(spec.namespace, spec.metricName),
		Value:     *latest.Average,
		Timestamp: ts,
		Kind:      types.KindGauge,
		Labels:    labels,
		Source:    sourceType,
	}}
}

// normalizeName maps e.g. "AWS/EC2/CPUUtilization" -> "ec2_cpu_utilization"
// (spec §4.2).
func normalizeName(namespace, metric string) string {
	ns := strings.TrimPrefix(namespace, "AWS/")
	return strings.ToLower(ns) + "_" + toSnakeCase(metric)
}

func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				prevUpper := runes[i-1] >= 'A' && runes[i-1] <= 'Z'
				nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
				if !prevUpper || nextLower {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
