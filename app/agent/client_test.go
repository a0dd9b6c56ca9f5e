// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package agent_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-io/helios/app/agent"
	config "github.com/helios-io/helios/app/config/agent"
)

func endpointFor(t *testing.T, srv *httptest.Server) config.Endpoint {
	t.Helper()
	return config.Endpoint{
		URL:           srv.URL,
		Timeout:       2 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    10 * time.Millisecond,
	}
}

func TestClient_IngestSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(agent.IngestResponse{Received: 2})
	}))
	defer srv.Close()

	c := agent.NewClient(endpointFor(t, srv), "test")
	resp, err := c.Ingest(context.Background(), samples(2))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Received)
}

func TestClient_IngestUnauthorizedDoesNotRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := agent.NewClient(endpointFor(t, srv), "test")
	_, err := c.Ingest(context.Background(), samples(1))
	require.ErrorIs(t, err, agent.ErrUnauthorized)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_IngestRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(agent.IngestResponse{Received: 1})
	}))
	defer srv.Close()

	c := agent.NewClient(endpointFor(t, srv), "test")
	resp, err := c.Ingest(context.Background(), samples(1))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Received)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_IngestExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := agent.NewClient(endpointFor(t, srv), "test")
	_, err := c.Ingest(context.Background(), samples(1))
	require.ErrorIs(t, err, agent.ErrFlushFailed)
}

func TestClient_Probe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := agent.NewClient(endpointFor(t, srv), "test")
	assert.NoError(t, c.Probe(context.Background()))
}
