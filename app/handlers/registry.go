// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-obvious/server/request"

	"github.com/helios-io/helios/app/domain"
	"github.com/helios-io/helios/app/types"
)

// listDeployments implements GET /api/deployments (spec §6.2).
func (a *ServerAPI) listDeployments(w http.ResponseWriter, r *http.Request) {
	deployments, err := a.registry.ListDeployments(r.Context(), r.URL.Query().Get("environment"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, deployments, http.StatusOK)
}

type createDeploymentRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Environment types.Environment `json:"environment"`
}

// createDeployment implements POST /api/deployments (spec §6.2).
func (a *ServerAPI) createDeployment(w http.ResponseWriter, r *http.Request) {
	var req createDeploymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, r, fmt.Errorf("%w: %s", types.ErrValidation, err))
		return
	}
	d := &types.Deployment{Name: req.Name, Description: req.Description, Environment: req.Environment}
	if err := a.registry.CreateDeployment(r.Context(), d); err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, d, http.StatusCreated)
}

// getDeployment implements GET /api/deployments/{id} (spec §6.2).
func (a *ServerAPI) getDeployment(w http.ResponseWriter, r *http.Request) {
	d, err := a.registry.GetDeployment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, d, http.StatusOK)
}

type patchDeploymentRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Environment *types.Environment `json:"environment"`
}

// patchDeployment implements PATCH /api/deployments/{id} (spec §6.2).
func (a *ServerAPI) patchDeployment(w http.ResponseWriter, r *http.Request) {
	var req patchDeploymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, r, fmt.Errorf("%w: %s", types.ErrValidation, err))
		return
	}
	d, err := a.registry.UpdateDeployment(r.Context(), chi.URLParam(r, "id"), domain.DeploymentPatch{
		Name:        req.Name,
		Description: req.Description,
		Environment: req.Environment,
	})
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, d, http.StatusOK)
}

// deleteDeployment implements DELETE /api/deployments/{id} (spec §6.2).
func (a *ServerAPI) deleteDeployment(w http.ResponseWriter, r *http.Request) {
	if err := a.registry.DeleteDeployment(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, nil, http.StatusNoContent)
}

// getDeploymentMetrics implements GET /api/deployments/{id}/metrics.
func (a *ServerAPI) getDeploymentMetrics(w http.ResponseWriter, r *http.Request) {
	names, err := a.registry.GetDeploymentMetrics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, names, http.StatusOK)
}

// listAgents implements GET /api/deployments/{id}/agents.
func (a *ServerAPI) listAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := a.registry.ListAgents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, agents, http.StatusOK)
}

// registerAgent implements POST /api/deployments/{id}/agents/register.
func (a *ServerAPI) registerAgent(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, r, fmt.Errorf("%w: %s", types.ErrValidation, err))
		return
	}
	agent, err := a.registry.RegisterAgent(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, agent, http.StatusOK)
}

// patchAgent implements PATCH /api/agents/{id} (spec §4.3 update_config(),
// spec §8 worked example).
func (a *ServerAPI) patchAgent(w http.ResponseWriter, r *http.Request) {
	var req domain.AgentConfigPatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, r, fmt.Errorf("%w: %s", types.ErrValidation, err))
		return
	}
	agent, err := a.registry.UpdateAgentConfig(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, agent, http.StatusOK)
}

// getAgent implements GET /api/agents/{id}.
func (a *ServerAPI) getAgent(w http.ResponseWriter, r *http.Request) {
	agent, err := a.registry.GetAgent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, agent, http.StatusOK)
}

type heartbeatRequest struct {
	Metrics []string `json:"metrics"`
}

// heartbeatAgent implements POST /api/agents/{id}/heartbeat.
func (a *ServerAPI) heartbeatAgent(w http.ResponseWriter, r *http.Request) {
	var req heartbeatRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if err := a.registry.Heartbeat(r.Context(), chi.URLParam(r, "id"), req.Metrics); err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, nil, http.StatusNoContent)
}

// deleteAgent implements DELETE /api/agents/{id}.
func (a *ServerAPI) deleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := a.registry.DeleteAgent(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	request.Reply(r, w, nil, http.StatusNoContent)
}
