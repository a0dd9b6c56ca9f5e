// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// NewDriver opens a GORM database instance with settings shared by every
// backend: singular table names, UTC millisecond timestamps, structured
// logging, and sentinel error translation.
func NewDriver(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		NowFunc:        DatabaseNow,
		Logger:         &ZeroLogAdapter{SlowThreshold: 200 * time.Millisecond},
		TranslateError: true,
	})
}

// DatabaseNow returns the current time in UTC truncated to millisecond
// precision, used for every created_at/updated_at/last_seen column.
func DatabaseNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
