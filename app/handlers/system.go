// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"
	"time"

	"github.com/go-obvious/server/request"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helios-io/helios/app/build"
)

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	ModelsLoaded  bool   `json:"models_loaded"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// getHealth implements GET /health (spec §6.2).
func (a *ServerAPI) getHealth(w http.ResponseWriter, r *http.Request) {
	ready := a.modelMgr.Ready()
	loaded := true
	for _, ok := range ready {
		loaded = loaded && ok
	}
	request.Reply(r, w, healthResponse{
		Status:        "ok",
		Version:       build.GetVersion(),
		ModelsLoaded:  loaded,
		UptimeSeconds: int64(time.Since(a.startedAt).Seconds()),
	}, http.StatusOK)
}

type readyResponse struct {
	Ready        bool            `json:"ready"`
	ModelsReady  bool            `json:"models_ready"`
	Details      map[string]bool `json:"details"`
}

// getReady implements GET /ready (spec §6.2).
func (a *ServerAPI) getReady(w http.ResponseWriter, r *http.Request) {
	details := a.modelMgr.Ready()
	allReady := true
	for _, ok := range details {
		allReady = allReady && ok
	}
	request.Reply(r, w, readyResponse{
		Ready:       allReady,
		ModelsReady: allReady,
		Details:     details,
	}, http.StatusOK)
}

// listModels implements GET /models (spec §6.2).
func (a *ServerAPI) listModels(w http.ResponseWriter, r *http.Request) {
	request.Reply(r, w, a.modelMgr.Info(), http.StatusOK)
}

// servePrometheus implements GET /metrics (spec §6.2): Prometheus exposition
// format, the same promhttp.Handler the teacher's PromMetricsAPI wraps.
func (a *ServerAPI) servePrometheus(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
