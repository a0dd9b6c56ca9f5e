// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-obvious/server/request"

	"github.com/helios-io/helios/app/types"
)

// postIngest implements POST /api/v1/ingest (spec §6.1).
func (a *ServerAPI) postIngest(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req types.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, r, fmt.Errorf("%w: %s", types.ErrValidation, err))
		return
	}
	if len(req.Metrics) == 0 {
		request.Reply(r, w, types.IngestResponse{Received: 0}, http.StatusOK)
		return
	}

	resp, err := a.ingest.Ingest(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, resp, http.StatusOK)
}
