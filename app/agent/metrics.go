// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package agent

import "github.com/prometheus/client_golang/prometheus"

// Prometheus series exposed on the agent's local /metrics surface (spec
// §4.1 supplement), grounded on app/http/middleware's registration style.
var (
	samplesCollectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "helios_agent_samples_collected_total",
		Help: "Samples successfully collected, labeled by source.",
	}, []string{"source"})

	flushTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "helios_agent_flush_total",
		Help: "Flush attempts against the server, labeled by result.",
	}, []string{"result"})

	bufferSizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "helios_agent_buffer_size",
		Help: "Current number of samples held in the flush buffer.",
	})

	droppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "helios_agent_dropped_total",
		Help: "Samples dropped due to buffer overflow.",
	})
)

func init() {
	prometheus.MustRegister(samplesCollectedTotal, flushTotal, bufferSizeGauge, droppedTotal)
}
