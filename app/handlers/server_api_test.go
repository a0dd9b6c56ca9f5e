// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-io/helios/app/detector"
	"github.com/helios-io/helios/app/domain"
	"github.com/helios-io/helios/app/handlers"
	"github.com/helios-io/helios/app/models"
	"github.com/helios-io/helios/app/predictor"
	"github.com/helios-io/helios/app/recommender"
	"github.com/helios-io/helios/app/storage/memory"
	"github.com/helios-io/helios/app/types"
	"github.com/helios-io/helios/app/utils"
)

func newTestAPI(t *testing.T) *handlers.ServerAPI {
	t.Helper()
	clock := &utils.Clock{}
	metrics := memory.NewMetricStore(1000)
	registry := domain.NewRegistryService(memory.NewDeploymentStore(), memory.NewAgentStore(), metrics, clock, 30)
	ingest := domain.NewIngestPipeline(metrics, registry)

	mgr, err := models.NewManager(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, mgr.Load(context.Background()))

	predictorSvc := predictor.New(mgr, time.Minute, clock)
	detectorSvc := detector.New(mgr)
	recommenderSvc := recommender.New(time.Minute, clock)

	return handlers.NewServerAPI("/", registry, ingest, metrics, mgr, predictorSvc, detectorSvc, recommenderSvc)
}

func doJSON(t *testing.T, mux http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestServerAPI_Health(t *testing.T) {
	api := newTestAPI(t)
	rec := doJSON(t, api.Routes(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerAPI_Ready(t *testing.T) {
	api := newTestAPI(t)
	rec := doJSON(t, api.Routes(), http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerAPI_ListModels(t *testing.T) {
	api := newTestAPI(t)
	rec := doJSON(t, api.Routes(), http.MethodGet, "/models", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var info []models.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.NotEmpty(t, info)
}

func TestServerAPI_PredictEndToEnd(t *testing.T) {
	api := newTestAPI(t)
	rec := doJSON(t, api.Routes(), http.MethodPost, "/predict", predictor.Request{
		Metric:  "cpu_utilization",
		Periods: 4,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp predictor.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Predictions, 4)
}

func TestServerAPI_PredictRejectsBadPeriods(t *testing.T) {
	api := newTestAPI(t)
	rec := doJSON(t, api.Routes(), http.MethodPost, "/predict", predictor.Request{
		Metric:  "cpu_utilization",
		Periods: 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServerAPI_DeploymentAndAgentLifecycle(t *testing.T) {
	api := newTestAPI(t)
	mux := api.Routes()

	rec := doJSON(t, mux, http.MethodPost, "/api/deployments", map[string]interface{}{
		"name":        "prod-cluster",
		"description": "primary",
		"environment": string(types.EnvProduction),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var deployment types.Deployment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deployment))
	require.NotEmpty(t, deployment.ID)

	rec = doJSON(t, mux, http.MethodPost, "/api/deployments/"+deployment.ID+"/agents/register", domain.RegisterRequest{
		AgentID:      "agent-1",
		Hostname:     "host-1",
		Platform:     "linux",
		AgentVersion: "1.0.0",
		Metrics:      []string{"cpu_utilization"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var agent types.Agent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agent))
	require.Equal(t, "agent-1", agent.ID)

	rec = doJSON(t, mux, http.MethodPatch, "/api/agents/"+agent.ID, domain.AgentConfigPatch{
		Paused: boolPtr(true),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var patched types.Agent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &patched))
	assert.True(t, patched.Paused)

	rec = doJSON(t, mux, http.MethodGet, "/api/agents/"+agent.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/deployments/"+deployment.ID+"/agents", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerAPI_IngestAutoRegistersAgent(t *testing.T) {
	api := newTestAPI(t)
	mux := api.Routes()

	rec := doJSON(t, mux, http.MethodPost, "/api/v1/ingest", types.IngestRequest{
		AgentVersion: "1.0.0",
		SentAt:       time.Now(),
		Metrics: []types.MetricSample{
			{
				Name:      "cpu_utilization",
				Value:     0.5,
				Timestamp: time.Now(),
				Labels:    map[string]string{"deployment": "auto-dep", "agent_id": "agent-auto"},
			},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Received)
}

func TestServerAPI_GetDeploymentNotFound(t *testing.T) {
	api := newTestAPI(t)
	rec := doJSON(t, api.Routes(), http.MethodGet, "/api/deployments/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerAPI_MetricsRequiresDeploymentID(t *testing.T) {
	api := newTestAPI(t)
	rec := doJSON(t, api.Routes(), http.MethodGet, "/api/metrics", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func boolPtr(b bool) *bool { return &b }
