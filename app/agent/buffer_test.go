// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-io/helios/app/agent"
	"github.com/helios-io/helios/app/types"
)

func samples(n int) []types.MetricSample {
	out := make([]types.MetricSample, n)
	for i := range out {
		out[i] = types.MetricSample{Name: "m", Value: float64(i)}
	}
	return out
}

func TestBuffer_AppendAndTakePrefix(t *testing.T) {
	buf := agent.NewBuffer()
	buf.Append(samples(3))
	require.Equal(t, 3, buf.Len())

	batch := buf.TakePrefix(2)
	assert.Len(t, batch, 2)
	assert.Equal(t, 1, buf.Len())
}

func TestBuffer_TakePrefixMoreThanAvailable(t *testing.T) {
	buf := agent.NewBuffer()
	buf.Append(samples(2))

	batch := buf.TakePrefix(10)
	assert.Len(t, batch, 2)
	assert.Equal(t, 0, buf.Len())
}

func TestBuffer_PrependUnsentWithinBound(t *testing.T) {
	buf := agent.NewBuffer()
	buf.Append(samples(1))

	dropped := buf.PrependUnsent(samples(2), 100)
	assert.Equal(t, 0, dropped)
	assert.Equal(t, 3, buf.Len())
}

func TestBuffer_PrependUnsentOverflowDropsOldest(t *testing.T) {
	buf := agent.NewBuffer()
	buf.Append(samples(8))

	dropped := buf.PrependUnsent(samples(5), 10)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, 10, buf.Len())
	assert.Equal(t, 3, buf.OverflowCount())
}

func TestBuffer_EmptyTakePrefixIsNil(t *testing.T) {
	buf := agent.NewBuffer()
	assert.Nil(t, buf.TakePrefix(5))
}
