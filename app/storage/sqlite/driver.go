// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package sqlite configures the embedded relational backend: a gorm/sqlite
// connection with WAL journaling and foreign keys enabled (spec §4.3, §5).
package sqlite

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/helios-io/helios/app/storage/core"
	"github.com/helios-io/helios/app/types"
)

// InMemoryDSN forces an isolated, non-persistent database - tests use this
// to exercise the embedded backend without touching disk.
const InMemoryDSN = ":memory:"

// Open creates the embedded store, applies WAL + foreign_keys pragmas
// (spec §5: "connections use WAL journal mode and PRAGMA foreign_keys=ON"),
// and migrates the Deployment/Agent/MetricRow schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := core.NewDriver(sqlite.Open(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite driver: %w", err)
	}

	if dsn != InMemoryDSN {
		if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}
	if err := db.Exec("PRAGMA foreign_keys=ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.AutoMigrate(&types.Deployment{}, &types.Agent{}, &MetricRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}
