// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/helios-io/helios/app/agent"
	"github.com/helios-io/helios/app/build"
	config "github.com/helios-io/helios/app/config/agent"
	"github.com/helios-io/helios/app/logging"

	// blank-imported for its init() registration side effects: without it
	// the SourceRegistry is empty and every configured source is skipped
	// as "unknown source type" (see app/sources/all).
	_ "github.com/helios-io/helios/app/sources/all"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "", "Path to the configuration file")
	flag.Parse()

	settings, err := config.NewSettings(config.DefaultConfigPath(configFile))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load settings")
	}

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

	a := agent.New(settings, build.GetVersion())
	if err := a.Setup(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to set up agent sources")
	}

	var localSrv *http.Server
	if settings.LocalAPI.Enabled {
		localSrv = &http.Server{
			Addr:              settings.LocalAPI.Address,
			Handler:           agent.NewLocalAPI(a).Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("address", settings.LocalAPI.Address).Msg("starting local metrics/healthz surface")
			if err := localSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn().Err(err).Msg("local api server stopped unexpectedly")
			}
		}()
	}

	logger.Info().Msg("starting helios-agent")
	if err := a.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("agent run exited with error")
	}

	if localSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = localSrv.Shutdown(shutdownCtx)
	}
	logger.Info().Msg("helios-agent stopping")
}
