// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// ZeroLogAdapter bridges gorm's logger.Interface to the zerolog.Logger
// carried on context, so SQL logging follows the same sink and level
// discipline as the rest of the service.
type ZeroLogAdapter struct {
	SlowThreshold time.Duration
}

func (z *ZeroLogAdapter) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return z
}

func (z *ZeroLogAdapter) Info(ctx context.Context, msg string, args ...interface{}) {
	zerolog.Ctx(ctx).Info().Msgf(msg, args...)
}

func (z *ZeroLogAdapter) Warn(ctx context.Context, msg string, args ...interface{}) {
	zerolog.Ctx(ctx).Warn().Msgf(msg, args...)
}

func (z *ZeroLogAdapter) Error(ctx context.Context, msg string, args ...interface{}) {
	zerolog.Ctx(ctx).Error().Msgf(msg, args...)
}

func (z *ZeroLogAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	ev := zerolog.Ctx(ctx).Debug()
	if err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) {
		ev = zerolog.Ctx(ctx).Error().Err(err)
	} else if z.SlowThreshold > 0 && elapsed > z.SlowThreshold {
		ev = zerolog.Ctx(ctx).Warn()
	}
	ev.Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("sql")
}
