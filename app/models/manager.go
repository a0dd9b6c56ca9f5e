// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package models

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/helios-io/helios/app/utils/lock"
)

// Names are the three models the manager always owns (spec §4.5).
const (
	Baseline_ = "baseline"
	Prophet   = "prophet"
	XGBoost   = "xgboost"
)

var managed = []string{Prophet, XGBoost}

// BlobConfig optionally configures a minio/S3 endpoint artifacts are
// downloaded from when missing locally (spec §4.5 supplement, grounded on
// the teacher's app/storage/minio client).
type BlobConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// entry is one named model slot: the active model plus bookkeeping for
// /models introspection and hot-swap.
type entry struct {
	model    Model
	version  string
	loaded   bool
	fallback bool
}

// Manager owns the baseline/prophet/xgboost models, loading each lazily at
// startup from dir, optionally downloading missing artifacts from blob
// storage, and falling back to Baseline when loading fails (spec §4.5:
// "the service always boots successfully"). It is the module-scope
// SourceRegistry-equivalent: populated once at startup, read-only
// thereafter except for the atomic pointer swap a hot-swap performs.
type Manager struct {
	mu      sync.RWMutex
	dir     string
	entries map[string]*entry
	blob    *minio.Client
	bucket  string
	watcher *fsnotify.Watcher
}

// NewManager constructs a Manager rooted at dir, with an optional blob
// backend for downloading missing artifacts.
func NewManager(dir string, blob *BlobConfig) (*Manager, error) {
	m := &Manager{
		dir:     dir,
		entries: map[string]*entry{Baseline_: {model: NewBaseline(), version: "n/a", loaded: true}},
	}

	if blob != nil && blob.Endpoint != "" {
		cli, err := minio.New(blob.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(blob.AccessKey, blob.SecretKey, ""),
			Secure: blob.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("models: construct blob client: %w", err)
		}
		m.blob = cli
		m.bucket = blob.Bucket
	}

	return m, nil
}

// Load populates prophet and xgboost, attempting a local load, then (if a
// blob backend is configured) one download retry, then falling back to
// Baseline (spec §4.5 supplement: "retries a failed blob download exactly
// once before falling back to the in-memory equivalent").
func (m *Manager) Load(ctx context.Context) error {
	for _, name := range managed {
		m.loadOne(ctx, name)
	}
	return nil
}

func (m *Manager) loadOne(ctx context.Context, name string) {
	version := m.latestVersion(name)
	if version == "" {
		version = "v1"
	}

	art, err := loadArtifact(m.dir, name, version)
	if err != nil && m.blob != nil {
		log.Ctx(ctx).Warn().Err(err).Str("model", name).Msg("local model artifact missing, attempting blob download")
		if derr := m.download(ctx, name, version); derr != nil {
			log.Ctx(ctx).Warn().Err(derr).Str("model", name).Msg("blob download failed, falling back to in-memory equivalent")
		} else {
			art, err = loadArtifact(m.dir, name, version)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("model", name).Msg("model load failed, using in-memory fallback")
		m.entries[name] = &entry{model: NewBaseline(), version: version, loaded: false, fallback: true}
		return
	}
	m.entries[name] = &entry{model: art, version: version, loaded: true, fallback: false}
}

// download fetches <name>/<version>/{model.bin,metadata.json} from the blob
// backend into the local models directory, guarded by a file lock so
// multiple replicas sharing a directory don't race on the same artifact
// (grounded on app/utils/lock's stated use case).
func (m *Manager) download(ctx context.Context, name, version string) error {
	base := filepath.Join(m.dir, name, version)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", base, err)
	}

	fl := lock.NewFileLock(ctx, filepath.Join(base, ".download.lock"))
	if err := fl.Acquire(); err != nil {
		return fmt.Errorf("acquire download lock: %w", err)
	}
	defer fl.Release()

	for _, fname := range []string{"model.bin", "metadata.json"} {
		key := fmt.Sprintf("%s/%s/%s", name, version, fname)
		obj, err := m.blob.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return fmt.Errorf("get object %s: %w", key, err)
		}
		dst, err := os.Create(filepath.Join(base, fname))
		if err != nil {
			obj.Close()
			return fmt.Errorf("create %s: %w", fname, err)
		}
		_, copyErr := dst.ReadFrom(obj)
		obj.Close()
		dst.Close()
		if copyErr != nil {
			return fmt.Errorf("download %s: %w", key, copyErr)
		}
	}
	return nil
}

// latestVersion returns the lexicographically greatest version directory
// under <dir>/<name>, or "" if none exist yet.
func (m *Manager) latestVersion(name string) string {
	entries, err := os.ReadDir(filepath.Join(m.dir, name))
	if err != nil {
		return ""
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	if len(versions) == 0 {
		return ""
	}
	sort.Strings(versions)
	return versions[len(versions)-1]
}

// Get returns the active model registered under name.
func (m *Manager) Get(name string) (Model, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	if !ok {
		return nil, false
	}
	return e.model, true
}

// Info returns the /models endpoint payload (spec §6.2), sorted by name.
func (m *Manager) Info() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.entries))
	for name, e := range m.entries {
		out = append(out, Info{
			Name:      name,
			Version:   e.version,
			Framework: e.model.Framework(),
			Loaded:    e.loaded,
			Fallback:  e.fallback,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Ready reports per-model load status for GET /ready's `details` field.
func (m *Manager) Ready() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.entries))
	for name, e := range m.entries {
		out[name] = e.loaded || e.fallback // baseline fallback still serves requests
	}
	return out
}

// WatchForHotSwap starts an fsnotify watch on the models directory and
// reloads the affected named model whenever its artifact changes on disk,
// swapping the active model atomically under the write lock (spec §5
// "Global state ... ModelManager singleton ... apart from optional
// retraining swap which is an atomic pointer replace"). The caller should
// run it in its own goroutine; it returns when ctx is cancelled.
func (m *Manager) WatchForHotSwap(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("models: new watcher: %w", err)
	}
	m.watcher = w
	defer w.Close()

	for _, name := range managed {
		dir := filepath.Join(m.dir, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}
		if err := w.Add(dir); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("dir", dir).Msg("could not watch model directory for hot-swap")
		}
	}

	var debounce *time.Timer
	pending := map[string]bool{}
	var mu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := modelNameFromPath(m.dir, ev.Name)
			if name == "" {
				continue
			}
			mu.Lock()
			pending[name] = true
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(500*time.Millisecond, func() {
				mu.Lock()
				names := make([]string, 0, len(pending))
				for n := range pending {
					names = append(names, n)
				}
				pending = map[string]bool{}
				mu.Unlock()
				for _, n := range names {
					log.Ctx(ctx).Info().Str("model", n).Msg("reloading model after directory change")
					m.loadOne(ctx, n)
				}
			})
			mu.Unlock()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Ctx(ctx).Warn().Err(err).Msg("model directory watch error")
		}
	}
}

func modelNameFromPath(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) == 0 {
		return ""
	}
	for _, n := range managed {
		if parts[0] == n {
			return n
		}
	}
	return ""
}
