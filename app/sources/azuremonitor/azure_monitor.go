// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package azuremonitor queries Azure Monitor metrics via a service-principal
// credential (spec §4.2).
package azuremonitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/monitor/query/azmetrics"

	"github.com/helios-io/helios/app/sources"
	"github.com/helios-io/helios/app/types"
)

const sourceType = "azure_monitor"

func init() {
	sources.Register(sourceType, New, requiredCredentials, defaultQueries)
}

func requiredCredentials() []string {
	return []string{"tenant_id", "client_id", "client_secret", "subscription_id"}
}

func defaultQueries() []string { return []string{"Percentage CPU"} }

// Source queries Azure Monitor metrics for a fixed set of resource IDs
// configured via cfg.Namespaces (interpreted here as resource IDs).
type Source struct {
	sources.Base
	client *azmetrics.Client
}

func New(cfg types.SourceConfig) types.Source {
	return &Source{Base: sources.NewBase(sourceType, cfg)}
}

func (s *Source) Initialize(context.Context) error {
	cfg := s.Config()
	cred, err := azidentity.NewClientSecretCredential(
		cfg.Credentials["tenant_id"],
		cfg.Credentials["client_id"],
		cfg.Credentials["client_secret"],
		nil,
	)
	if err != nil {
		return fmt.Errorf("azure_monitor: credential: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://management.azure.com"
	}
	client, err := azmetrics.NewClient(endpoint, cred, nil)
	if err != nil {
		return fmt.Errorf("azure_monitor: client: %w", err)
	}
	s.client = client
	return nil
}

func (s *Source) HealthCheck(context.Context) bool { return s.client != nil }

func (s *Source) Close() error { return nil }

func (s *Source) Collect(ctx context.Context) types.CollectionResult {
	start := time.Now()
	metricNames := s.Config().Queries
	if len(metricNames) == 0 {
		metricNames = defaultQueries()
	}
	resourceIDs := s.Config().Namespaces
	if len(resourceIDs) == 0 {
		return types.ErrResult(sourceType, fmt.Errorf("azure_monitor: no resource ids configured"), time.Since(start))
	}

	var samples []types.MetricSample
	for _, resourceID := range resourceIDs {
		resp, err := s.client.QueryResources(ctx, subscriptionFromResourceID(resourceID), "", metricNames, azmetrics.ResourceIDList{
			ResourceIDs: []string{resourceID},
		}, nil)
		if err != nil {
			return types.ErrResult(sourceType, fmt.Errorf("query resource %q: %w", resourceID, err), time.Since(start))
		}
		samples = append(samples, s.toSamples(resourceID, resp)...)
	}
	return types.OkResult(sourceType, samples, time.Since(start))
}

func (s *Source) toSamples(resourceID string, resp azmetrics.QueryResourcesResponse) []types.MetricSample {
	var out []types.MetricSample
	for _, result := range resp.Values {
		for _, metric := range result.Values {
			if metric.Name == nil || metric.Name.Value == nil {
				continue
			}
			name := normalizeName(*metric.Name.Value)
			for _, series := range metric.TimeSeries {
				if len(series.Data) == 0 {
					continue
				}
				latest := series.Data[len(series.Data)-1]
				if latest.Average == nil {
					continue
				}
				ts := time.Now().UTC()
				if latest.TimeStamp != nil {
					ts = latest.TimeStamp.UTC()
				}
				labels := sources.MergeLabels(map[string]string{"resource_id": resourceID}, s.Config().Labels)
				out = append(out, types.MetricSample{
					Name:      name,
					Value:     *latest.Average,
					Timestamp: ts,
					Kind:      types.KindGauge,
					Labels:    labels,
					Source:    sourceType,
				})
			}
		}
	}
	return out
}

// normalizeName maps e.g. "Percentage CPU" -> "percentage_cpu" and
// "Disk % Used" -> "disk_pct_used" (spec
// §4.2: "snake_case lowercase with %→pct").
func normalizeName(metric string) string {
	metric = strings.ReplaceAll(metric, "%", "pct")
	metric = strings.ToLower(metric)
	metric = strings.ReplaceAll(metric, " ", "_")
	return metric
}

func subscriptionFromResourceID(resourceID string) string {
	parts := strings.Split(strings.TrimPrefix(resourceID, "/"), "/")
	for i, p := range parts {
		if strings.EqualFold(p, "subscriptions") && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
