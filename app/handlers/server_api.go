// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package handlers implements helios-server's REST surface (spec §6.2) as a
// single go-obvious/server API, following the teacher's api.Service +
// chi.Mux handler convention (app/handlers/*.go in the teacher repo).
package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-obvious/server"
	"github.com/go-obvious/server/api"

	"github.com/helios-io/helios/app/detector"
	"github.com/helios-io/helios/app/domain"
	"github.com/helios-io/helios/app/models"
	"github.com/helios-io/helios/app/predictor"
	"github.com/helios-io/helios/app/recommender"
	"github.com/helios-io/helios/app/types"
)

// ServerAPI is the entire helios-server HTTP surface mounted as one
// api.Service: health/readiness, model introspection, the predict/detect/
// recommend endpoints, the registry CRUD surface, and ingest. It is kept as
// a single Mux (rather than the teacher's usual one-API-per-concern split)
// because spec §6.2 names one flat path list with no independent
// lifecycle per group; splitting it would only reintroduce multiple
// Mounts entries at overlapping base paths for no benefit.
type ServerAPI struct {
	api.Service

	registry    *domain.RegistryService
	ingest      *domain.IngestPipeline
	metrics     types.MetricStore
	modelMgr    *models.Manager
	predictor   *predictor.Service
	detector    *detector.Service
	recommender *recommender.Service
	startedAt   time.Time
}

// NewServerAPI constructs the ServerAPI and mounts its router at base.
func NewServerAPI(
	base string,
	registry *domain.RegistryService,
	ingest *domain.IngestPipeline,
	metrics types.MetricStore,
	modelMgr *models.Manager,
	predictorSvc *predictor.Service,
	detectorSvc *detector.Service,
	recommenderSvc *recommender.Service,
) *ServerAPI {
	a := &ServerAPI{
		registry:    registry,
		ingest:      ingest,
		metrics:     metrics,
		modelMgr:    modelMgr,
		predictor:   predictorSvc,
		detector:    detectorSvc,
		recommender: recommenderSvc,
		startedAt:   time.Now(),
		Service: api.Service{
			APIName: "helios",
			Mounts:  map[string]*chi.Mux{},
		},
	}
	a.Service.Mounts[base] = a.Routes()
	return a
}

// Register satisfies server.API.
func (a *ServerAPI) Register(app server.Server) error {
	return a.Service.Register(app)
}

// Routes wires spec §6.2's flat path list onto one chi.Mux.
func (a *ServerAPI) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", a.getHealth)
	r.Get("/ready", a.getReady)
	r.Get("/models", a.listModels)
	r.Get("/metrics", a.servePrometheus)

	r.Post("/predict", a.postPredict)
	r.Post("/predict/batch", a.postPredictBatch)
	r.Post("/detect", a.postDetect)
	r.Post("/recommend", a.postRecommend)

	r.Route("/api", func(r chi.Router) {
		r.Post("/v1/ingest", a.postIngest)

		r.Get("/deployments", a.listDeployments)
		r.Post("/deployments", a.createDeployment)
		r.Get("/deployments/{id}", a.getDeployment)
		r.Patch("/deployments/{id}", a.patchDeployment)
		r.Delete("/deployments/{id}", a.deleteDeployment)
		r.Get("/deployments/{id}/metrics", a.getDeploymentMetrics)
		r.Get("/deployments/{id}/agents", a.listAgents)
		r.Post("/deployments/{id}/agents/register", a.registerAgent)

		r.Get("/agents/{id}", a.getAgent)
		r.Patch("/agents/{id}", a.patchAgent)
		r.Post("/agents/{id}/heartbeat", a.heartbeatAgent)
		r.Delete("/agents/{id}", a.deleteAgent)

		r.Get("/metrics", a.listMetricNames)
		r.Get("/metrics/{name}", a.getMetric)
		r.Get("/metrics/{name}/latest", a.getMetricLatest)
	})

	return r
}
