// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package types defines the core interfaces and data structures shared between
// the Helios agent and server: metric samples, source configuration, the
// deployment/agent registry model, and the storage interfaces that both the
// embedded and in-memory backends implement.
package types

import "time"

// MetricKind identifies the shape of a MetricSample's value.
type MetricKind string

const (
	KindGauge     MetricKind = "gauge"
	KindCounter   MetricKind = "counter"
	KindHistogram MetricKind = "histogram"
	KindSummary   MetricKind = "summary"
)

// MetricSample is one observation produced by a Source. It is immutable
// after creation: a Source builds it once, the agent buffer holds it until
// flushed, and the server copies it verbatim into the metrics store.
type MetricSample struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
	Kind      MetricKind        `json:"type"`
	Labels    map[string]string `json:"labels,omitempty"`
	Source    string            `json:"source,omitempty"`
}

// CollectionResult is the outcome of one poll of a single Source. It is a
// sum type: either Success is true and Metrics is populated, or Success is
// false and Error carries the failure reason. Sources must never let an
// error escape collect() as a panic or propagated error; this is the shape
// collect() returns instead.
type CollectionResult struct {
	Source   string
	Success  bool
	Metrics  []MetricSample
	Error    string
	Duration time.Duration
}

// OkResult builds a successful CollectionResult.
func OkResult(source string, metrics []MetricSample, d time.Duration) CollectionResult {
	return CollectionResult{Source: source, Success: true, Metrics: metrics, Duration: d}
}

// ErrResult builds a failed CollectionResult. The error is recorded as a
// string, not wrapped, since CollectionResult crosses the poller/buffer
// boundary and is logged, not handled programmatically.
func ErrResult(source string, err error, d time.Duration) CollectionResult {
	return CollectionResult{Source: source, Success: false, Error: err.Error(), Duration: d}
}
