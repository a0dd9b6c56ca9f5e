// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/helios-io/helios/app/storage/core"
	"github.com/helios-io/helios/app/types"
)

// AgentStore is the embedded-backend implementation of types.AgentStore.
type AgentStore struct {
	core.BaseRepoImpl
}

func NewAgentStore(db *gorm.DB) *AgentStore {
	return &AgentStore{BaseRepoImpl: core.NewBaseRepoImpl(db, &types.Agent{})}
}

func (s *AgentStore) Create(ctx context.Context, a *types.Agent) error {
	return core.TranslateError(s.DB(ctx).Create(a).Error)
}

func (s *AgentStore) Get(ctx context.Context, id string) (*types.Agent, error) {
	var a types.Agent
	if err := s.DB(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, core.TranslateError(err)
	}
	return &a, nil
}

func (s *AgentStore) Update(ctx context.Context, a *types.Agent) error {
	return core.TranslateError(s.DB(ctx).Save(a).Error)
}

func (s *AgentStore) Delete(ctx context.Context, id string) error {
	return core.TranslateError(s.DB(ctx).Where("id = ?", id).Delete(&types.Agent{}).Error)
}

func (s *AgentStore) ListByDeployment(ctx context.Context, deploymentID string) ([]types.Agent, error) {
	var out []types.Agent
	if err := s.DB(ctx).Where("deployment_id = ?", deploymentID).Order("hostname").Find(&out).Error; err != nil {
		return nil, core.TranslateError(err)
	}
	return out, nil
}

func (s *AgentStore) Touch(ctx context.Context, id string, seenAt time.Time, metrics []string) error {
	updates := map[string]interface{}{
		"last_seen": seenAt,
		"status":    types.StatusOnline,
	}
	if metrics != nil {
		updates["metrics"] = types.StringList(metrics)
		updates["metrics_count"] = len(metrics)
	}
	return core.TranslateError(s.DB(ctx).Model(&types.Agent{}).Where("id = ?", id).Updates(updates).Error)
}
