// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"time"
)

// StorageCommon is provided by every repository built on the embedded
// backend's base implementation, regardless of model type.
type StorageCommon interface {
	// Tx runs block inside a transaction, committing on nil return and
	// rolling back otherwise.
	Tx(ctx context.Context, block func(ctxTx context.Context) error) error

	// Count returns the total number of records in the repository.
	Count(ctx context.Context) (int, error)

	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error
}

// Storage is the complete CRUD contract for a single model type.
type Storage[Model any, ID comparable] interface {
	Creator[Model]
	Reader[Model, ID]
	Updater[Model]
	Deleter[ID]
}

type Creator[Model any] interface {
	Create(ctx context.Context, it *Model) error
}

type Reader[Model any, ID comparable] interface {
	Get(ctx context.Context, id ID) (*Model, error)
}

type Updater[Model any] interface {
	Update(ctx context.Context, it *Model) error
}

type Deleter[ID comparable] interface {
	Delete(ctx context.Context, id ID) error
}

// DeploymentStore is the registry's deployment repository. List supports the
// environment filter from GET /api/deployments.
type DeploymentStore interface {
	Storage[Deployment, string]

	List(ctx context.Context, environment string) ([]Deployment, error)
	GetByName(ctx context.Context, name string) (*Deployment, error)
}

// AgentStore is the registry's agent repository.
type AgentStore interface {
	Storage[Agent, string]

	ListByDeployment(ctx context.Context, deploymentID string) ([]Agent, error)
	// Touch records a heartbeat: updates last_seen and, when non-nil,
	// replaces the agent's advertised metric name list.
	Touch(ctx context.Context, id string, seenAt time.Time, metrics []string) error
}

// MetricQuery selects a window of stored samples for prediction, detection,
// and the metrics query endpoints.
type MetricQuery struct {
	DeploymentID string
	AgentID      string // optional, empty means all agents in the deployment
	MetricName   string
	Since        time.Time
	Limit        int
}

// MetricStore is the bounded time-series store backing both the registry's
// metrics endpoints and the analytics packages (predictor/detector). Every
// implementation enforces the configured max_points retention as one bound
// on the total number of stored points.
type MetricStore interface {
	// Append records samples, evicting the oldest stored points once the
	// total passes the retention bound.
	Append(ctx context.Context, deploymentID, agentID string, samples []MetricSample) error

	// Query returns points matching q ordered oldest-first.
	Query(ctx context.Context, q MetricQuery) ([]MetricSample, error)

	// SeriesNames lists the distinct metric names observed for a deployment.
	SeriesNames(ctx context.Context, deploymentID string) ([]string, error)

	// Count returns the total number of stored points for a deployment,
	// used for the computed Deployment.MetricsCount field.
	Count(ctx context.Context, deploymentID string) (int, error)
}
