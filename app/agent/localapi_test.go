// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package agent_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-io/helios/app/agent"
)

func TestLocalAPI_HealthzOKBeforeAnyFlush(t *testing.T) {
	a := agent.New(testSettings("http://example.invalid"), "test")
	require.NoError(t, a.Setup(context.Background()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	agent.NewLocalAPI(a).Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotContains(t, body, "last_flush")
}

func TestLocalAPI_HealthzDegradedAfterFailedFlush(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testSettings(srv.URL)
	cfg.Sources[0].Interval = 5 * time.Millisecond
	cfg.Sources[1].Enabled = false
	cfg.FlushInterval = time.Hour
	cfg.Endpoint.RetryAttempts = 1
	cfg.Endpoint.RetryDelay = time.Millisecond

	a := agent.New(cfg, "test")
	require.NoError(t, a.Setup(context.Background()))

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		_ = a.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	a.Stop(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	agent.NewLocalAPI(a).Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	lastFlush, ok := body["last_flush"].(map[string]interface{})
	require.True(t, ok, "expected last_flush in response")
	assert.Equal(t, false, lastFlush["ok"])
}

func TestLocalAPI_MetricsServesPrometheusExposition(t *testing.T) {
	a := agent.New(testSettings("http://example.invalid"), "test")
	require.NoError(t, a.Setup(context.Background()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	agent.NewLocalAPI(a).Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
