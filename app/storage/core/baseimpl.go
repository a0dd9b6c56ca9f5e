// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"

	"gorm.io/gorm"
)

// RawBaseRepoImpl is the context-aware database handle embedded by every
// repository. It carries no model assumptions; BaseRepoImpl adds those.
type RawBaseRepoImpl struct {
	db *gorm.DB
}

func NewRawBaseRepoImpl(db *gorm.DB) RawBaseRepoImpl {
	return RawBaseRepoImpl{db: db}
}

// DB returns a transaction-aware *gorm.DB: if ctx carries a transaction
// started by Tx, operations join it; otherwise the base connection is used.
func (b *RawBaseRepoImpl) DB(ctx context.Context) *gorm.DB {
	if tx, found := FromContext(ctx); found {
		return tx.WithContext(ctx)
	}
	return b.db.WithContext(ctx)
}

// Tx runs block inside a transaction, committing on nil return.
func (b *RawBaseRepoImpl) Tx(ctx context.Context, block func(ctxTx context.Context) error) error {
	db := b.DB(ctx)
	return db.Transaction(func(tx *gorm.DB) error {
		return block(NewContext(ctx, tx))
	})
}

// BaseRepoImpl adds model-scoped Count/DeleteAll to RawBaseRepoImpl.
type BaseRepoImpl struct {
	RawBaseRepoImpl
	model interface{}
}

func NewBaseRepoImpl(db *gorm.DB, model interface{}) BaseRepoImpl {
	return BaseRepoImpl{
		RawBaseRepoImpl: NewRawBaseRepoImpl(db),
		model:           model,
	}
}

func (b *BaseRepoImpl) Count(ctx context.Context) (int, error) {
	var count int64
	err := b.DB(ctx).Model(b.model).Count(&count).Error
	return int(count), TranslateError(err)
}

func (b *BaseRepoImpl) DeleteAll(ctx context.Context) error {
	return TranslateError(b.DB(ctx).Where("1 = 1").Delete(b.model).Error)
}

type contextKey int

var dbKey contextKey

// NewContext returns a context carrying a transaction-scoped *gorm.DB.
func NewContext(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey, db)
}

// FromContext retrieves a transaction-scoped *gorm.DB set by NewContext.
func FromContext(ctx context.Context) (*gorm.DB, bool) {
	db, ok := ctx.Value(dbKey).(*gorm.DB)
	return db, ok
}
