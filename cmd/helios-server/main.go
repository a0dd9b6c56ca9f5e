// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-obvious/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/helios-io/helios/app/build"
	config "github.com/helios-io/helios/app/config/server"
	"github.com/helios-io/helios/app/detector"
	"github.com/helios-io/helios/app/domain"
	"github.com/helios-io/helios/app/handlers"
	"github.com/helios-io/helios/app/http/middleware"
	"github.com/helios-io/helios/app/logging"
	"github.com/helios-io/helios/app/models"
	"github.com/helios-io/helios/app/predictor"
	"github.com/helios-io/helios/app/recommender"
	"github.com/helios-io/helios/app/storage/memory"
	"github.com/helios-io/helios/app/storage/sqlite"
	"github.com/helios-io/helios/app/types"
	"github.com/helios-io/helios/app/utils"
)

const defaultCollectionInterval = 30

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", configFile, "Path to the configuration file")
	flag.Parse()

	settings, err := config.NewSettings(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load settings")
	}

	clock := &utils.Clock{}

	ctx := context.Background()
	logger, err := logging.NewLogger(
		logging.WithLevel(settings.Logging.Level),
		logging.WithPretty(settings.Logging.Pretty),
		logging.WithVersion(build.GetVersion()),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create the logger")
	}
	zerolog.DefaultContextLogger = logger
	ctx = logger.WithContext(ctx)

	if logger.GetLevel() <= zerolog.DebugLevel {
		enc, encErr := json.MarshalIndent(settings, "", "  ")
		if encErr != nil {
			logger.Fatal().Err(encErr).Msg("failed to encode the config")
		}
		fmt.Println(string(enc))
	}

	deploymentStore, agentStore, metricStore, err := openStores(ctx, settings)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	registry := domain.NewRegistryService(deploymentStore, agentStore, metricStore, clock, defaultCollectionInterval)
	ingest := domain.NewIngestPipeline(metricStore, registry)

	modelMgr, err := models.NewManager(settings.Models.Dir, blobConfig(settings))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize model manager")
	}
	if err := modelMgr.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("model manager started without every model loaded")
	}
	go func() {
		if err := modelMgr.WatchForHotSwap(ctx); err != nil {
			logger.Warn().Err(err).Msg("model hot-swap watcher exited")
		}
	}()

	predictorSvc := predictor.New(modelMgr, settings.Models.CacheTTL, clock)
	detectorSvc := detector.New(modelMgr)
	recommenderSvc := recommender.New(time.Duration(settings.Models.CooldownMins)*time.Minute, clock)

	mw := []server.Middleware{
		middleware.LoggingMiddlewareWrapper,
		middleware.PromHTTPMiddleware,
		handlers.AuthMiddleware(settings.Server.AuthKey),
	}

	apis := []server.API{
		handlers.NewServerAPI("/", registry, ingest, metricStore, modelMgr, predictorSvc, detectorSvc, recommenderSvc),
	}

	go func() {
		handleShutdownEvents(ctx)
		os.Exit(0)
	}()

	logger.Info().Uint("port", settings.Server.Port).Msg("starting helios-server")
	server.New(build.Version()).
		WithAddress(fmt.Sprintf(":%d", settings.Server.Port)).
		WithMiddleware(mw...).
		WithAPIs(apis...).
		WithListener(server.HTTPListener()).
		Run(ctx)
	logger.Info().Msg("helios-server stopping")
}

// openStores opens the embedded sqlite backend; if that fails (spec §4.5:
// "always boots successfully"), it falls back to the in-memory stores rather
// than refusing to start.
func openStores(ctx context.Context, settings *config.Settings) (types.DeploymentStore, types.AgentStore, types.MetricStore, error) {
	db, err := sqlite.Open(settings.Database.Path)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to open embedded store, falling back to in-memory storage")
		return memory.NewDeploymentStore(), memory.NewAgentStore(), memory.NewMetricStore(settings.Database.MaxPoints), nil
	}
	return sqlite.NewDeploymentStore(db), sqlite.NewAgentStore(db), sqlite.NewMetricStore(ctx, db, settings.Database.MaxPoints, 0), nil
}

func blobConfig(settings *config.Settings) *models.BlobConfig {
	if settings.Models.BlobEndpoint == "" {
		return nil
	}
	return &models.BlobConfig{
		Endpoint:  settings.Models.BlobEndpoint,
		Bucket:    settings.Models.BlobBucket,
		AccessKey: settings.Models.BlobAccessKey,
		SecretKey: settings.Models.BlobSecretKey,
	}
}

func handleShutdownEvents(ctx context.Context) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalChan
	log.Ctx(ctx).Info().Str("signal", sig.String()).Msg("received signal, service stopping")
}
