// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import "time"

// IngestRequest is the POST /api/v1/ingest body shared by the agent (which
// marshals it) and the server (which unmarshals it) (spec §6.1).
type IngestRequest struct {
	Metrics      []MetricSample `json:"metrics"`
	AgentVersion string         `json:"agent_version"`
	SentAt       time.Time      `json:"sent_at"`
}

// IngestResponse is the 200 body of POST /api/v1/ingest (spec §6.1).
type IngestResponse struct {
	Received int       `json:"received"`
	Commands *Commands `json:"commands,omitempty"`
}
