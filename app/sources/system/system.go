// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package system is the built-in host-counters source (spec §4.2). It
// requires no credentials and needs no backend connection, so Initialize
// and HealthCheck are trivially successful.
package system

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"

	"github.com/helios-io/helios/app/sources"
	"github.com/helios-io/helios/app/types"
)

const sourceType = "system"

func init() {
	sources.Register(sourceType, New, requiredCredentials, defaultQueries)
}

func requiredCredentials() []string { return nil }

func defaultQueries() []string { return nil }

// Source polls OS-level counters via gopsutil.
type Source struct {
	sources.Base
	host   string
	perCPU bool
}

func New(cfg types.SourceConfig) types.Source {
	perCPU, _ := strconv.ParseBool(cfg.Options["per_cpu"])
	host, _ := os.Hostname()
	return &Source{Base: sources.NewBase(sourceType, cfg), host: host, perCPU: perCPU}
}

func (s *Source) Initialize(context.Context) error { return nil }

func (s *Source) HealthCheck(context.Context) bool { return true }

func (s *Source) Close() error { return nil }

func (s *Source) Collect(ctx context.Context) types.CollectionResult {
	start := time.Now()
	var samples []types.MetricSample

	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		samples = append(samples, s.sample("cpu_utilization", pct[0]/100.0, types.KindGauge, nil))
	}
	if s.perCPU {
		if pcts, err := cpu.PercentWithContext(ctx, 0, true); err == nil {
			for i, pct := range pcts {
				samples = append(samples, s.sample("cpu_utilization", pct/100.0, types.KindGauge, map[string]string{
					"cpu": strconv.Itoa(i),
				}))
			}
		}
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		samples = append(samples, s.sample("memory_utilization", vm.UsedPercent/100.0, types.KindGauge, nil))
		samples = append(samples, s.sample("memory_bytes", float64(vm.Used), types.KindGauge, map[string]string{"type": "used"}))
		samples = append(samples, s.sample("memory_bytes", float64(vm.Total), types.KindGauge, map[string]string{"type": "total"}))
	}

	if parts, err := disk.PartitionsWithContext(ctx, false); err == nil {
		for _, p := range parts {
			usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
			if err != nil {
				continue
			}
			samples = append(samples, s.sample("disk_utilization", usage.UsedPercent/100.0, types.KindGauge, map[string]string{
				"device":     p.Device,
				"mountpoint": p.Mountpoint,
			}))
		}
	}

	if counters, err := net.IOCountersWithContext(ctx, false); err == nil && len(counters) > 0 {
		samples = append(samples, s.sample("network_bytes_recv", float64(counters[0].BytesRecv), types.KindCounter, nil))
		samples = append(samples, s.sample("network_bytes_sent", float64(counters[0].BytesSent), types.KindCounter, nil))
	}

	if loadAvgs, err := loadAverages(ctx); err == nil {
		samples = append(samples, s.sample("load_average_1m", loadAvgs[0], types.KindGauge, nil))
		samples = append(samples, s.sample("load_average_5m", loadAvgs[1], types.KindGauge, nil))
		samples = append(samples, s.sample("load_average_15m", loadAvgs[2], types.KindGauge, nil))
	}

	if n, err := processCount(ctx); err == nil {
		samples = append(samples, s.sample("process_count", float64(n), types.KindGauge, nil))
	}

	return types.OkResult(sourceType, samples, time.Since(start))
}

func (s *Source) sample(name string, value float64, kind types.MetricKind, extra map[string]string) types.MetricSample {
	labels := map[string]string{"host": s.host}
	for k, v := range extra {
		labels[k] = v
	}
	labels = sources.MergeLabels(labels, s.Config().Labels)
	return types.MetricSample{
		Name:      name,
		Value:     value,
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Labels:    labels,
		Source:    sourceType,
	}
}
