// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import "time"

// Environment is the deployment lifecycle stage.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Deployment is a named grouping of agents sharing an environment tag. Its
// agents_count/agents_online/metrics_count fields are computed at read
// time, never stored.
type Deployment struct {
	ID          string      `json:"id" gorm:"primaryKey"`
	Name        string      `json:"name" gorm:"uniqueIndex"`
	Description string      `json:"description"`
	Environment Environment `json:"environment"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Computed, never persisted.
	AgentsCount   int `json:"agents_count" gorm:"-"`
	AgentsOnline  int `json:"agents_online" gorm:"-"`
	MetricsCount  int `json:"metrics_count" gorm:"-"`
}

// AgentStatus is the derived liveness state of a registered Agent. It is a
// pure function of (now - last_seen, paused); LastSeen is the only source
// of truth.
type AgentStatus string

const (
	StatusOnline  AgentStatus = "online"
	StatusWarning AgentStatus = "warning"
	StatusOffline AgentStatus = "offline"
)

// Status derivation cutoffs (spec §4.3).
const (
	WarningAfter = 2 * time.Minute
	OfflineAfter = 5 * time.Minute
)

// DeriveStatus computes an Agent's status from elapsed time since last_seen
// and its paused flag. Paused agents are left untouched (treated as
// online-controlled), matching spec §4.3.
func DeriveStatus(since time.Duration, paused bool) AgentStatus {
	if paused {
		return StatusOnline
	}
	switch {
	case since > OfflineAfter:
		return StatusOffline
	case since > WarningAfter:
		return StatusWarning
	default:
		return StatusOnline
	}
}

// Agent is a registered collector instance belonging to exactly one
// Deployment.
type Agent struct {
	ID                 string      `json:"id" gorm:"primaryKey"`
	DeploymentID       string      `json:"deployment_id" gorm:"index"`
	Hostname           string      `json:"hostname"`
	Platform           string      `json:"platform"`
	AgentVersion       string      `json:"agent_version"`
	Status             AgentStatus `json:"status" gorm:"index"`
	LastSeen           time.Time   `json:"last_seen"`
	RegisteredAt       time.Time   `json:"registered_at"`
	Paused             bool        `json:"paused"`
	CollectionInterval int         `json:"collection_interval"`
	Metrics            StringList  `json:"metrics" gorm:"type:text"`
	MetricsCount       int         `json:"metrics_count"`
	Location           string      `json:"location,omitempty"`
	Region             string      `json:"region,omitempty"`
	Latitude           *float64    `json:"latitude,omitempty"`
	Longitude          *float64    `json:"longitude,omitempty"`
	IPAddress          string      `json:"ip_address,omitempty"`
}

// AgentConfig is the subset of Agent mutable through the control API and
// read by the command emitter (spec §4.3/§4.4).
type AgentConfig struct {
	Paused             bool `json:"paused"`
	CollectionInterval int  `json:"collection_interval"`
}

// Commands is the control-command block returned on every ingest response
// (spec §4.4, §6.1). Absent fields mean "no change".
type Commands struct {
	Paused             *bool `json:"paused,omitempty"`
	CollectionInterval *int  `json:"collection_interval,omitempty"`
}
