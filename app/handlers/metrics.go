// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-obvious/server/request"

	"github.com/helios-io/helios/app/types"
)

// listMetricNames implements GET /api/metrics (spec §6.2).
func (a *ServerAPI) listMetricNames(w http.ResponseWriter, r *http.Request) {
	deploymentID := r.URL.Query().Get("deployment_id")
	if deploymentID == "" {
		httpError(w, r, fmt.Errorf("%w: deployment_id is required", types.ErrValidation))
		return
	}
	names, err := a.metrics.SeriesNames(r.Context(), deploymentID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, map[string][]string{"metrics": names}, http.StatusOK)
}

type metricSeriesResponse struct {
	Metric string               `json:"metric"`
	Data   []types.MetricSample `json:"data"`
	Latest *types.MetricSample  `json:"latest"`
	Count  int                  `json:"count"`
}

// getMetric implements GET /api/metrics/{name}?deployment_id&hours&limit
// (spec §6.2).
func (a *ServerAPI) getMetric(w http.ResponseWriter, r *http.Request) {
	resp, err := a.queryMetric(r, chi.URLParam(r, "name"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, resp, http.StatusOK)
}

// getMetricLatest implements GET /api/metrics/{name}/latest (spec §6.2).
func (a *ServerAPI) getMetricLatest(w http.ResponseWriter, r *http.Request) {
	resp, err := a.queryMetric(r, chi.URLParam(r, "name"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, resp.Latest, http.StatusOK)
}

func (a *ServerAPI) queryMetric(r *http.Request, name string) (metricSeriesResponse, error) {
	q := r.URL.Query()
	deploymentID := q.Get("deployment_id")
	if deploymentID == "" {
		return metricSeriesResponse{}, fmt.Errorf("%w: deployment_id is required", types.ErrValidation)
	}

	hours := 24
	if v := q.Get("hours"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			hours = parsed
		}
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	data, err := a.metrics.Query(r.Context(), types.MetricQuery{
		DeploymentID: deploymentID,
		MetricName:   name,
		Since:        time.Now().Add(-time.Duration(hours) * time.Hour),
		Limit:        limit,
	})
	if err != nil {
		return metricSeriesResponse{}, err
	}

	resp := metricSeriesResponse{Metric: name, Data: data, Count: len(data)}
	if len(data) > 0 {
		resp.Latest = &data[len(data)-1]
	}
	return resp, nil
}
