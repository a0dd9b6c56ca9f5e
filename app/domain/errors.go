// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package domain implements the server's registry and ingest services: the
// deployment/agent CRUD surface, status derivation, auto-registration from
// ingest labels, and control-command emission (spec §4.3, §4.4).
package domain

import "errors"

var (
	// ErrInvalidName is returned when a deployment name fails the
	// `[a-z0-9-]{1,64}` slug pattern (spec §3 Deployment invariants).
	ErrInvalidName = errors.New("domain: invalid deployment name")

	// ErrDuplicateName is returned on create/update when another
	// deployment already holds the requested name.
	ErrDuplicateName = errors.New("domain: deployment name already in use")

	// ErrInvalidInterval is returned when a collection_interval patch
	// falls outside [5, 3600] seconds (spec §4.3 update_config).
	ErrInvalidInterval = errors.New("domain: collection_interval out of range")
)
