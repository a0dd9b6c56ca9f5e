// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package agent is the helios-agent runtime: it runs one poller per
// configured source, merges their output into a bounded buffer, flushes
// batches to the server on a fixed cadence, and applies server-returned
// commands (spec §4.1).
package agent

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	config "github.com/helios-io/helios/app/config/agent"
	"github.com/helios-io/helios/app/sources"
	"github.com/helios-io/helios/app/types"
	"github.com/helios-io/helios/app/utils/parallel"
)

const pauseSleep = 5 * time.Second

// Agent is the running collection process: N source pollers plus one flush
// task, sharing a single Buffer (spec §5).
type Agent struct {
	cfg            *config.Settings
	client         *Client
	buffer         *Buffer
	runningSources []types.Source

	running atomic.Bool
	paused  atomic.Bool

	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	flushMu     sync.RWMutex
	lastFlushAt time.Time
	lastFlushOK bool
}

// New constructs an Agent; call Setup before Run.
func New(cfg *config.Settings, agentVersion string) *Agent {
	return &Agent{
		cfg:    cfg,
		client: NewClient(cfg.Endpoint, agentVersion),
		buffer: NewBuffer(),
		stopCh: make(chan struct{}),
	}
}

// Setup instantiates and initializes each enabled source. A source that
// fails to construct or initialize is logged and skipped, never fatal
// (spec §4.1 setup(), §7 ConfigError/InitError).
func (a *Agent) Setup(ctx context.Context) error {
	for _, sc := range a.cfg.Sources {
		if !sc.Enabled {
			continue
		}
		src, ok := sources.Create(sc)
		if !ok {
			log.Ctx(ctx).Warn().Str("type", sc.Type).Str("name", sc.Name).Msg("unknown source type, skipping")
			continue
		}
		if err := src.Initialize(ctx); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("type", sc.Type).Str("name", sc.Name).Msg("source failed to initialize, skipping")
			continue
		}
		a.runningSources = append(a.runningSources, src)
	}
	return nil
}

// Run installs signal handlers, probes the server, and starts one poller
// per initialized source plus one flush task. It blocks until Stop is
// called (directly or via signal) and the pollers and flush task have
// exited; the final flush runs inside Stop and may finish after Run returns.
func (a *Agent) Run(ctx context.Context) error {
	a.running.Store(true)

	ctx, cancel := context.WithCancel(ctx)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Ctx(ctx).Info().Msg("received shutdown signal")
			a.Stop(ctx)
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := a.client.Probe(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("startup health probe against server failed, continuing")
	}

	for _, src := range a.runningSources {
		a.wg.Add(1)
		go a.pollLoop(ctx, src)
	}

	a.wg.Add(1)
	go a.flushLoop(ctx)

	a.wg.Wait()
	signal.Stop(sigCh)
	return nil
}

// pollLoop implements the poller loop from spec §4.1: sleep(5s) while
// paused; otherwise collect once, append successes, log failures, then
// sleep for the interval override or the source's configured interval. An
// in-flight Collect is never interrupted (spec §5 cooperative cancellation).
func (a *Agent) pollLoop(ctx context.Context, src types.Source) {
	defer a.wg.Done()
	for a.running.Load() {
		if a.paused.Load() {
			if !a.sleep(ctx, pauseSleep) {
				return
			}
			continue
		}

		result := src.Collect(ctx)
		if result.Success {
			a.buffer.Append(result.Metrics)
			samplesCollectedTotal.WithLabelValues(result.Source).Add(float64(len(result.Metrics)))
			bufferSizeGauge.Set(float64(a.buffer.Len()))
		} else {
			log.Ctx(ctx).Warn().Str("source", result.Source).Str("error", result.Error).Msg("collection failed")
		}

		if !a.sleep(ctx, src.Interval()) {
			return
		}
	}
}

// flushLoop sleeps flush_interval then calls flushOnce, until stopped.
func (a *Agent) flushLoop(ctx context.Context) {
	defer a.wg.Done()
	for a.running.Load() {
		if !a.sleep(ctx, a.cfg.FlushInterval) {
			return
		}
		a.flushOnce(ctx)
	}
}

// sleep waits for d, waking early (and returning false) if the context is
// cancelled or Stop has been called.
func (a *Agent) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	case <-a.stopCh:
		return false
	}
}

// flushOnce implements spec §4.1 flush_metrics(): take up to batch_size
// samples, POST them, apply any returned commands on success, and
// re-buffer (prepending) on failure.
func (a *Agent) flushOnce(ctx context.Context) {
	if a.buffer.Len() == 0 {
		return
	}

	batch := a.buffer.TakePrefix(a.cfg.BatchSize)
	if len(batch) == 0 {
		return
	}

	resp, err := a.client.Ingest(ctx, batch)
	if err != nil {
		dropped := a.buffer.PrependUnsent(batch, a.cfg.BatchSize*10)
		if dropped > 0 {
			droppedTotal.Add(float64(dropped))
			log.Ctx(ctx).Warn().Int("dropped", dropped).Msg("buffer overflow, dropped oldest samples")
		}
		log.Ctx(ctx).Warn().Err(err).Msg("flush failed, re-buffered batch")
		flushTotal.WithLabelValues("failure").Inc()
		bufferSizeGauge.Set(float64(a.buffer.Len()))
		a.recordFlush(false)
		return
	}

	log.Ctx(ctx).Info().Int("count", resp.Received).Msg("flushed metrics")
	if resp.Commands != nil {
		a.applyCommands(resp.Commands)
	}
	flushTotal.WithLabelValues("success").Inc()
	bufferSizeGauge.Set(float64(a.buffer.Len()))
	a.recordFlush(true)
}

func (a *Agent) recordFlush(ok bool) {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()
	a.lastFlushAt = time.Now().UTC()
	a.lastFlushOK = ok
}

// LastFlush reports the timestamp and outcome of the most recent flush
// attempt, or the zero time if none has happened yet. Used by the agent's
// local /healthz surface.
func (a *Agent) LastFlush() (at time.Time, ok bool) {
	a.flushMu.RLock()
	defer a.flushMu.RUnlock()
	return a.lastFlushAt, a.lastFlushOK
}

// applyCommands implements spec §4.1 command application: paused toggles
// atomically (observed by pollers on their next iteration, never
// interrupting an in-flight collect); collection_interval overrides every
// source's sleep until a nil value reverts to per-source config.
func (a *Agent) applyCommands(cmd *Commands) {
	if cmd.Paused != nil {
		a.paused.Store(*cmd.Paused)
	}
	for _, src := range a.runningSources {
		src.SetIntervalOverride(cmd.CollectionInterval)
	}
}

// Stop flips the running flag, flushes once synchronously, then closes
// each source and the HTTP client (spec §4.1 stop()).
func (a *Agent) Stop(ctx context.Context) {
	a.stopOnce.Do(func() {
		a.running.Store(false)
		close(a.stopCh)
		a.flushOnce(ctx)
		for _, src := range a.runningSources {
			if err := src.Close(); err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("source", src.SourceType()).Msg("error closing source")
			}
		}
		if err := a.client.Close(); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("error closing http client")
		}
	})
}

// CollectOnce runs every source exactly once, concurrently, and returns the
// merged samples. Used by the agent's "test" CLI mode (spec §4.1).
func (a *Agent) CollectOnce(ctx context.Context) []types.MetricSample {
	mgr := parallel.New(-1)
	waiter := parallel.NewWaiter()

	var mu sync.Mutex
	var merged []types.MetricSample

	for _, src := range a.runningSources {
		src := src
		mgr.Run(func() error {
			result := src.Collect(ctx)
			if result.Success {
				mu.Lock()
				merged = append(merged, result.Metrics...)
				mu.Unlock()
			}
			return nil
		}, waiter)
	}

	mgr.Close()
	waiter.Wait()
	return merged
}

// HealthCheck probes every source and the server, returning a per-target
// status map (spec §4.1 health_check()).
func (a *Agent) HealthCheck(ctx context.Context) map[string]bool {
	status := make(map[string]bool, len(a.runningSources)+1)
	for _, src := range a.runningSources {
		status[src.SourceType()] = src.HealthCheck(ctx)
	}
	status["server"] = a.probeServer(ctx)
	return status
}

func (a *Agent) probeServer(ctx context.Context) bool {
	return a.client.Probe(ctx) == nil
}
