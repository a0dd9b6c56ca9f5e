// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package agent

import "errors"

var (
	// ErrUnauthorized is returned when the server responds 401; Ingest does
	// not retry it within the flush, and the batch stays buffered for the
	// next flush (spec §4.1/§7 AuthError).
	ErrUnauthorized = errors.New("agent: unauthorized")

	// ErrFlushFailed wraps a flush attempt that exhausted its retries.
	ErrFlushFailed = errors.New("agent: flush failed")

	// ErrNoSuchSource names an unregistered source type (spec §7
	// ConfigError). Setup does not return it: it logs the unknown type and
	// skips that source.
	ErrNoSuchSource = errors.New("agent: unknown source type")
)
