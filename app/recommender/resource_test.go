// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recommender_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-io/helios/app/recommender"
)

func TestParseCPUMillicores(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"500m", 500},
		{"1", 1000},
		{"0.5", 500},
		{"", 0},
	}
	for _, c := range cases {
		got, err := recommender.ParseCPUMillicores(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestParseCPUMillicores_InvalidInput(t *testing.T) {
	_, err := recommender.ParseCPUMillicores("not-a-quantity")
	assert.Error(t, err)
}

func TestParseMemoryBytes(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"512Mi", 512 * 1024 * 1024},
		{"2Gi", 2 * 1024 * 1024 * 1024},
		{"1000000", 1000000},
		{"", 0},
	}
	for _, c := range cases {
		got, err := recommender.ParseMemoryBytes(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestParseMemoryBytes_InvalidInput(t *testing.T) {
	_, err := recommender.ParseMemoryBytes("not-a-quantity")
	assert.Error(t, err)
}
