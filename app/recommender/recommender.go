// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package recommender implements RecommenderService (spec §4.5): cooldown-
// gated scale and right-size recommendations behind POST /recommend.
package recommender

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/helios-io/helios/app/types"
)

const (
	scaleUpThreshold   = 0.85
	scaleDownThreshold = 0.30
)

// CurrentState describes a workload's current replica count and resource
// requests/limits (spec §4.5 recommend request body's `current_state`).
type CurrentState struct {
	Replicas    int    `json:"replicas"`
	MinReplicas int    `json:"min_replicas"`
	MaxReplicas int    `json:"max_replicas"`
	CurrentEst  float64 `json:"current_utilization_estimate"`
	CPURequest  string `json:"cpu_request"`
	CPULimit    string `json:"cpu_limit"`
}

// Request is a POST /recommend body (spec §6.2).
type Request struct {
	Workload          string       `json:"workload"`
	Namespace         string       `json:"namespace"`
	CurrentState      CurrentState `json:"current_state"`
	Predictions       []float64    `json:"predictions"`
	TargetUtilization float64      `json:"target_utilization"`
}

// Action is one recommended action (spec §4.5: scale_out, scale_in,
// no_action, or a secondary vertical right-size action).
type Action struct {
	Type              string  `json:"type"`
	TargetReplicas    int     `json:"target_replicas,omitempty"`
	Confidence        float64 `json:"confidence"`
	EstimatedSavings  float64 `json:"estimated_savings_pct,omitempty"`
	Reason            string  `json:"reason"`
}

// Response is the POST /recommend 200 body.
type Response struct {
	Workload       string   `json:"workload"`
	Namespace      string   `json:"namespace"`
	Actions        []Action `json:"actions"`
	CooldownActive bool     `json:"cooldown_active"`
}

type cooldownEntry struct {
	at       time.Time
	response Response
}

// Service implements RecommenderService. Cooldown state is a process-wide
// map keyed by namespace/workload (spec §5 "Recommender cooldown state is
// a process-wide map of workload_key -> (timestamp, recommendation)").
type Service struct {
	cooldown time.Duration
	clock    types.TimeProvider

	mu    sync.Mutex
	state map[string]cooldownEntry
}

// New constructs a Service with the given per-workload cooldown window.
func New(cooldown time.Duration, clock types.TimeProvider) *Service {
	return &Service{cooldown: cooldown, clock: clock, state: map[string]cooldownEntry{}}
}

// Recommend implements spec §4.5 RecommenderService.recommend.
func (s *Service) Recommend(ctx context.Context, req Request) (Response, error) {
	if req.TargetUtilization <= 0 {
		req.TargetUtilization = 0.70
	}
	key := fmt.Sprintf("%s/%s", req.Namespace, req.Workload)
	now := s.clock.GetCurrentTime()

	s.mu.Lock()
	if entry, ok := s.state[key]; ok && now.Sub(entry.at) < s.cooldown {
		s.mu.Unlock()
		return Response{
			Workload:       req.Workload,
			Namespace:      req.Namespace,
			Actions:        []Action{{Type: "no_action", Confidence: 1, Reason: "cooldown active"}},
			CooldownActive: true,
		}, nil
	}
	s.mu.Unlock()

	u := req.CurrentState.CurrentEst
	for _, p := range req.Predictions {
		if p > u {
			u = p
		}
	}

	var actions []Action
	scaling := false

	switch {
	case u > scaleUpThreshold:
		target := scaleTarget(req.CurrentState.Replicas, u, req.TargetUtilization, req.CurrentState.MaxReplicas, true)
		confidence := math.Min(0.5+(u-scaleUpThreshold)*2, 0.95)
		actions = append(actions, Action{
			Type: "scale_out", TargetReplicas: target, Confidence: confidence,
			Reason: fmt.Sprintf("utilization %.2f exceeds scale-up threshold %.2f", u, scaleUpThreshold),
		})
		scaling = true

	case u < scaleDownThreshold:
		target := scaleTarget(req.CurrentState.Replicas, u, req.TargetUtilization, req.CurrentState.MinReplicas, false)
		confidence := math.Min(0.4+(scaleDownThreshold-u), 0.85)
		savings := 0.0
		if req.CurrentState.Replicas > 0 {
			savings = float64(req.CurrentState.Replicas-target) / float64(req.CurrentState.Replicas) * 100
		}
		actions = append(actions, Action{
			Type: "scale_in", TargetReplicas: target, Confidence: confidence, EstimatedSavings: savings,
			Reason: fmt.Sprintf("utilization %.2f below scale-down threshold %.2f", u, scaleDownThreshold),
		})
		scaling = true

	default:
		actions = append(actions, Action{Type: "no_action", Confidence: 0.9, Reason: "utilization within target band"})
	}

	if rightSize, ok := verticalRightSize(req.CurrentState); ok {
		actions = append(actions, rightSize)
	}

	resp := Response{Workload: req.Workload, Namespace: req.Namespace, Actions: actions}

	if scaling {
		s.mu.Lock()
		s.state[key] = cooldownEntry{at: now, response: resp}
		s.mu.Unlock()
	}

	return resp, nil
}

// scaleTarget computes ceil(replicas * u / targetUtilization), clamped to
// [min, max] with 0 treated as "no bound" for the clamp it governs.
func scaleTarget(replicas int, u, targetUtilization float64, bound int, upper bool) int {
	if targetUtilization <= 0 {
		targetUtilization = 0.70
	}
	raw := int(math.Ceil(float64(replicas) * u / targetUtilization))
	if upper {
		if bound > 0 && raw > bound {
			raw = bound
		}
		return raw
	}
	if raw < bound {
		raw = bound
	}
	return raw
}

// verticalRightSize emits the secondary right-size action when CPU limit
// exceeds 3x CPU request (spec §4.5).
func verticalRightSize(cs CurrentState) (Action, bool) {
	if cs.CPURequest == "" || cs.CPULimit == "" {
		return Action{}, false
	}
	request, err := ParseCPUMillicores(cs.CPURequest)
	if err != nil || request <= 0 {
		return Action{}, false
	}
	limit, err := ParseCPUMillicores(cs.CPULimit)
	if err != nil {
		return Action{}, false
	}
	if limit <= 3*request {
		return Action{}, false
	}
	return Action{
		Type:       "right_size",
		Confidence: 0.6,
		Reason:     fmt.Sprintf("cpu limit %dm exceeds 3x cpu request %dm", limit, request),
	}, true
}
