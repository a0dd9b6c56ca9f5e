// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringMap is a map[string]string stored as a single JSON text column,
// used for the metrics row's `labels JSON` field (spec §4.3 schema).
type StringMap map[string]string

func (m StringMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, fmt.Errorf("marshal string map: %w", err)
	}
	return string(b), nil
}

func (m *StringMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported string map column type %T", value)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*m = nil
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return fmt.Errorf("unmarshal string map: %w", err)
	}
	*m = out
	return nil
}
