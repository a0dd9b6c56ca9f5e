// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"sync"

	"github.com/helios-io/helios/app/types"
)

// Buffer is the single mutex-guarded splice point between pollers and the
// flush loop (spec §5: "a single mutex held only for the O(batch) splice
// operations"). Ordering within one source's emissions is preserved since
// Append always writes to the tail; ordering across sources is not
// guaranteed since pollers interleave their Append calls.
type Buffer struct {
	mu       sync.Mutex
	samples  []types.MetricSample
	overflow int
}

// NewBuffer constructs an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds samples to the buffer tail.
func (b *Buffer) Append(samples []types.MetricSample) {
	if len(samples) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = append(b.samples, samples...)
}

// Len reports the current buffered sample count.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// TakePrefix removes and returns up to n samples from the buffer head.
func (b *Buffer) TakePrefix(n int) []types.MetricSample {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.samples) == 0 {
		return nil
	}
	if n > len(b.samples) {
		n = len(b.samples)
	}
	batch := make([]types.MetricSample, n)
	copy(batch, b.samples[:n])
	b.samples = b.samples[n:]
	return batch
}

// PrependUnsent puts a failed batch back at the head, then truncates the
// oldest overflow past maxSize, recording the dropped count (spec §4.1 step
// 5: "prepend the unsent batch back to the buffer; if the buffer then
// exceeds batch_size x 10, drop the oldest overflow").
func (b *Buffer) PrependUnsent(batch []types.MetricSample, maxSize int) (dropped int) {
	if len(batch) == 0 {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = append(batch, b.samples...)
	if maxSize > 0 && len(b.samples) > maxSize {
		dropped = len(b.samples) - maxSize
		b.samples = b.samples[dropped:]
		b.overflow += dropped
	}
	return dropped
}

// OverflowCount reports the cumulative number of samples dropped to
// overflow since the buffer was created.
func (b *Buffer) OverflowCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflow
}
