// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recommender

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCPUMillicores parses a Kubernetes-style CPU quantity ("500m" -> 500,
// "1" -> 1000, "0.5" -> 500) into millicores (spec §4.5 "Resource string
// parsing").
func ParseCPUMillicores(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.HasSuffix(s, "m") {
		v, err := strconv.ParseInt(strings.TrimSuffix(s, "m"), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse cpu quantity %q: %w", s, err)
		}
		return v, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cpu quantity %q: %w", s, err)
	}
	return int64(v * 1000), nil
}

var memoryUnits = map[string]float64{
	"Ki": 1024,
	"Mi": 1024 * 1024,
	"Gi": 1024 * 1024 * 1024,
	"K":  1000,
	"M":  1000 * 1000,
	"G":  1000 * 1000 * 1000,
}

// ParseMemoryBytes parses a Kubernetes-style memory quantity ("512Mi",
// "2Gi", "1000000") into bytes (spec §4.5 "Resource string parsing").
func ParseMemoryBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	for _, unit := range []string{"Ki", "Mi", "Gi", "K", "M", "G"} {
		if strings.HasSuffix(s, unit) {
			num := strings.TrimSuffix(s, unit)
			v, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return 0, fmt.Errorf("parse memory quantity %q: %w", s, err)
			}
			return int64(v * memoryUnits[unit]), nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse memory quantity %q: %w", s, err)
	}
	return int64(v), nil
}
