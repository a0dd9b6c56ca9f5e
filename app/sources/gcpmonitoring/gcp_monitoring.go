// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package gcpmonitoring queries Google Cloud Monitoring time series (spec
// §4.2).
package gcpmonitoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"google.golang.org/api/iterator"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/helios-io/helios/app/sources"
	"github.com/helios-io/helios/app/types"
)

const sourceType = "gcp_monitoring"

func init() {
	sources.Register(sourceType, New, requiredCredentials, defaultQueries)
}

func requiredCredentials() []string { return []string{"project_id"} }

func defaultQueries() []string {
	return []string{"compute.googleapis.com/instance/cpu/utilization"}
}

// Source lists GCP Monitoring time series, aligning each by a heuristic
// chosen from the metric type name (spec §4.2).
type Source struct {
	sources.Base
	client    *monitoring.MetricClient
	projectID string
}

func New(cfg types.SourceConfig) types.Source {
	return &Source{Base: sources.NewBase(sourceType, cfg), projectID: cfg.Credentials["project_id"]}
}

func (s *Source) Initialize(ctx context.Context) error {
	client, err := monitoring.NewMetricClient(ctx)
	if err != nil {
		return fmt.Errorf("gcp_monitoring: client: %w", err)
	}
	s.client = client
	return nil
}

func (s *Source) HealthCheck(context.Context) bool { return s.client != nil }

func (s *Source) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Source) Collect(ctx context.Context) types.CollectionResult {
	start := time.Now()
	metricTypes := s.Config().Queries
	if len(metricTypes) == 0 {
		metricTypes = defaultQueries()
	}

	windowEnd := time.Now()
	interval := &monitoringpb.TimeInterval{
		StartTime: timestamppb.New(windowEnd.Add(-5 * time.Minute)),
		EndTime:   timestamppb.New(windowEnd),
	}

	var samples []types.MetricSample
	for _, metricType := range metricTypes {
		req := &monitoringpb.ListTimeSeriesRequest{
			Name:     "projects/" + s.projectID,
			Filter:   fmt.Sprintf(`metric.type = "%s"`, metricType),
			Interval: interval,
			Aggregation: &monitoringpb.Aggregation{
				AlignmentPeriod:  &durationpb.Duration{Seconds: 60},
				PerSeriesAligner: alignerFor(metricType),
			},
		}
		it := s.client.ListTimeSeries(ctx, req)
		for {
			ts, err := it.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return types.ErrResult(sourceType, fmt.Errorf("list %q: %w", metricType, err), time.Since(start))
			}
			if sample, ok := s.toSample(metricType, ts); ok {
				samples = append(samples, sample)
			}
		}
	}
	return types.OkResult(sourceType, samples, time.Since(start))
}

func (s *Source) toSample(metricType string, ts *monitoringpb.TimeSeries) (types.MetricSample, bool) {
	if len(ts.Points) == 0 {
		return types.MetricSample{}, false
	}
	point := ts.Points[0]
	value, ok := decodeTypedValue(point.Value)
	if !ok {
		return types.MetricSample{}, false
	}

	labels := make(map[string]string)
	for k, v := range ts.Resource.GetLabels() {
		labels[k] = v
	}
	for k, v := range ts.Metric.GetLabels() {
		labels[k] = v
	}
	labels = sources.MergeLabels(labels, s.Config().Labels)

	eventTime := time.Now().UTC()
	if point.Interval != nil && point.Interval.EndTime != nil {
		eventTime = point.Interval.EndTime.AsTime()
	}

	return types.MetricSample{
		Name:      normalizeName(metricType),
		Value:     value,
		Timestamp: eventTime.UTC(),
		Kind:      types.KindGauge,
		Labels:    labels,
		Source:    sourceType,
	}, true
}

// decodeTypedValue decodes a TypedValue in the order {double, int64,
// bool->1/0, distribution.mean} (spec §4.2).
func decodeTypedValue(v *monitoringpb.TypedValue) (float64, bool) {
	switch x := v.GetValue().(type) {
	case *monitoringpb.TypedValue_DoubleValue:
		return x.DoubleValue, true
	case *monitoringpb.TypedValue_Int64Value:
		return float64(x.Int64Value), true
	case *monitoringpb.TypedValue_BoolValue:
		if x.BoolValue {
			return 1, true
		}
		return 0, true
	case *monitoringpb.TypedValue_DistributionValue:
		return x.DistributionValue.GetMean(), true
	}
	return 0, false
}

// alignerFor chooses ALIGN_MEAN for utilization/used/limit_utilization
// metrics, otherwise ALIGN_RATE (spec §4.2).
func alignerFor(metricType string) monitoringpb.Aggregation_Aligner {
	lower := strings.ToLower(metricType)
	if strings.Contains(lower, "utilization") || strings.Contains(lower, "memory/used") || strings.Contains(lower, "limit_utilization") {
		return monitoringpb.Aggregation_ALIGN_MEAN
	}
	return monitoringpb.Aggregation_ALIGN_RATE
}

// normalizeName strips the domain prefix, e.g.
// "compute.googleapis.com/instance/cpu/utilization" -> "instance/cpu/utilization"
// (spec §4.2).
func normalizeName(metricType string) string {
	if idx := strings.Index(metricType, "/"); idx >= 0 {
		return metricType[idx+1:]
	}
	return metricType
}
