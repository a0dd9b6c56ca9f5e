// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-obvious/server/request"

	"github.com/helios-io/helios/app/detector"
	"github.com/helios-io/helios/app/predictor"
	"github.com/helios-io/helios/app/recommender"
)

// postPredict implements POST /predict (spec §6.2).
func (a *ServerAPI) postPredict(w http.ResponseWriter, r *http.Request) {
	var req predictor.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, r, fmt.Errorf("decode request: %w", err))
		return
	}
	resp, err := a.predictor.Predict(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, resp, http.StatusOK)
}

type predictBatchRequest struct {
	Metrics []string `json:"metrics"`
	Periods int      `json:"periods"`
	Model   string   `json:"model"`
}

// postPredictBatch implements POST /predict/batch (spec §6.2).
func (a *ServerAPI) postPredictBatch(w http.ResponseWriter, r *http.Request) {
	var req predictBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, r, fmt.Errorf("decode request: %w", err))
		return
	}
	resp, err := a.predictor.PredictBatch(r.Context(), req.Metrics, req.Periods, req.Model)
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, resp, http.StatusOK)
}

// postDetect implements POST /detect (spec §6.2).
func (a *ServerAPI) postDetect(w http.ResponseWriter, r *http.Request) {
	var req detector.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, r, fmt.Errorf("decode request: %w", err))
		return
	}
	request.Reply(r, w, a.detector.Detect(r.Context(), req), http.StatusOK)
}

// postRecommend implements POST /recommend (spec §6.2).
func (a *ServerAPI) postRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommender.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, r, fmt.Errorf("decode request: %w", err))
		return
	}
	resp, err := a.recommender.Recommend(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, resp, http.StatusOK)
}
