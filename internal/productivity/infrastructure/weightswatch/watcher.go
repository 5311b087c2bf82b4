// Package weightswatch reloads scoring weights when their file changes.
package weightswatch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/felixgeelhaar/nudge/internal/productivity/application/services"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/nudge/pkg/observability"
)

// debounceDelay coalesces the burst of events an editor save produces.
const debounceDelay = 100 * time.Millisecond

// Watcher watches a weights file and swaps the engine's weights on change.
// The directory is watched, not the file, so atomic renames are seen.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	engine   *services.PriorityEngine
	onReload func()
	logger   *slog.Logger
	metrics  observability.Metrics

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher for path. onReload runs after each successful swap.
func New(path string, engine *services.PriorityEngine, onReload func(), logger *slog.Logger, metrics observability.Metrics) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	abs, err := security.CleanPath(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return &Watcher{
		fsw:      fsw,
		path:     abs,
		engine:   engine,
		onReload: onReload,
		logger:   logger,
		metrics:  metrics,
	}, nil
}

// Run blocks until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.debounce()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("weights watcher error", "error", err)
		}
	}
}

// Reload reads the file now. Invalid files leave the current weights in place.
func (w *Watcher) Reload() error {
	weights, err := services.LoadWeights(w.path)
	if err != nil {
		w.logger.Warn("keeping current weights", "path", w.path, "error", err)
		return err
	}
	w.engine.SetWeights(weights)
	w.metrics.Counter(observability.MetricWeightsReloaded, 1)
	w.logger.Info("weights reloaded", "path", w.path)
	if w.onReload != nil {
		w.onReload()
	}
	return nil
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, func() { _ = w.Reload() })
}
