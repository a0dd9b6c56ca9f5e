// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"

	"gorm.io/gorm"

	"github.com/helios-io/helios/app/storage/core"
	"github.com/helios-io/helios/app/types"
)

// DeploymentStore is the embedded-backend implementation of
// types.DeploymentStore.
type DeploymentStore struct {
	core.BaseRepoImpl
}

func NewDeploymentStore(db *gorm.DB) *DeploymentStore {
	return &DeploymentStore{BaseRepoImpl: core.NewBaseRepoImpl(db, &types.Deployment{})}
}

func (s *DeploymentStore) Create(ctx context.Context, d *types.Deployment) error {
	return core.TranslateError(s.DB(ctx).Create(d).Error)
}

func (s *DeploymentStore) Get(ctx context.Context, id string) (*types.Deployment, error) {
	var d types.Deployment
	if err := s.DB(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, core.TranslateError(err)
	}
	return &d, nil
}

func (s *DeploymentStore) GetByName(ctx context.Context, name string) (*types.Deployment, error) {
	var d types.Deployment
	if err := s.DB(ctx).Where("name = ?", name).First(&d).Error; err != nil {
		return nil, core.TranslateError(err)
	}
	return &d, nil
}

func (s *DeploymentStore) Update(ctx context.Context, d *types.Deployment) error {
	return core.TranslateError(s.DB(ctx).Save(d).Error)
}

func (s *DeploymentStore) Delete(ctx context.Context, id string) error {
	return core.TranslateError(s.DB(ctx).Where("id = ?", id).Delete(&types.Deployment{}).Error)
}

func (s *DeploymentStore) List(ctx context.Context, environment string) ([]types.Deployment, error) {
	var out []types.Deployment
	q := s.DB(ctx)
	if environment != "" {
		q = q.Where("environment = ?", environment)
	}
	if err := q.Order("name").Find(&out).Error; err != nil {
		return nil, core.TranslateError(err)
	}
	return out, nil
}
