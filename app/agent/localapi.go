// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LocalAPI serves the agent's own Prometheus exposition and health surface,
// bound to loopback by default (spec §4.1 supplement: metrics endpoint +
// health_check() HTTP surface, grounded on app/handlers/prom_metrics.go's
// promhttp.Handler() wiring).
type LocalAPI struct {
	agent *Agent
}

// NewLocalAPI constructs a LocalAPI reporting on the given Agent.
func NewLocalAPI(a *Agent) *LocalAPI {
	return &LocalAPI{agent: a}
}

// Routes builds the chi.Mux for the local surface: GET /metrics and
// GET /healthz.
func (l *LocalAPI) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/healthz", l.getHealthz)
	return r
}

type healthzLastFlush struct {
	At time.Time `json:"at"`
	OK bool      `json:"ok"`
}

type healthzResponse struct {
	Status    string            `json:"status"`
	Sources   map[string]bool   `json:"sources"`
	LastFlush *healthzLastFlush `json:"last_flush,omitempty"`
}

// getHealthz implements the agent's health_check() HTTP surface: per-source
// health plus the last flush result, so an operator or liveness probe can
// introspect the agent without going through the CLI. The "server" probe is
// reported in the map but does not by itself degrade the status.
func (l *LocalAPI) getHealthz(w http.ResponseWriter, r *http.Request) {
	sources := l.agent.HealthCheck(r.Context())

	resp := healthzResponse{Status: "ok", Sources: sources}
	for name, healthy := range sources {
		if name == "server" {
			continue
		}
		if !healthy {
			resp.Status = "degraded"
			break
		}
	}
	if at, ok := l.agent.LastFlush(); !at.IsZero() {
		resp.LastFlush = &healthzLastFlush{At: at, OK: ok}
		if !ok && resp.Status == "ok" {
			resp.Status = "degraded"
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
