package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/internal/app"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/subscribers"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/nudge/pkg/config"
	"github.com/felixgeelhaar/nudge/pkg/observability"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := observability.NewLogger(observability.DefaultLogConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = app.NewLogger(cfg, "nudge-worker", cli.Version, os.Stdout)
	logger.Info("starting nudge worker", "user_id", cfg.UserID, "strategy", cfg.Strategy)

	notify := func(ctx context.Context, n subscribers.Nudge) {
		logger.InfoContext(ctx, "reminder delivered", "task_id", n.TaskID, "user_id", n.UserID, "due_at", n.DueAt)
	}
	container, err := app.NewContainer(ctx, cfg, logger, app.WithNotifier(notify))
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if _, err := container.LoadSession(ctx); err != nil {
		logger.Error("failed to load tasks", "error", err)
		os.Exit(1)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.RabbitMQURL != "" {
		registry := eventbus.NewConsumerRegistry(logger)
		registry.Register(container.ReminderNudger)
		consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL:       cfg.RabbitMQURL,
			QueueName: "nudge.worker.reminders",
			Exchange:  eventbus.ExchangeName,
			Logger:    logger,
		}, registry)
		if err != nil {
			logger.Error("failed to connect consumer to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()
		g.Go(func() error { return consumer.Start(ctx) })
	}

	if cfg.OutboxProcessorEnabled {
		g.Go(func() error { return container.OutboxProcessor.Run(ctx) })
	}

	g.Go(func() error { return container.ReminderDispatcher.Run(ctx, cfg.ReminderPollInterval) })
	g.Go(func() error { return container.Tracker.Run(ctx, cfg.FocusTick) })
	if container.WeightsWatcher != nil {
		g.Go(func() error {
			container.WeightsWatcher.Run(ctx)
			return nil
		})
	}
	g.Go(func() error {
		every(ctx, cfg.OutboxCleanupInterval, func() {
			if _, err := container.OutboxProcessor.Cleanup(ctx); err != nil {
				logger.Error("outbox cleanup failed", "error", err)
			}
		})
		return nil
	})
	g.Go(func() error {
		every(ctx, cfg.OutboxStatsInterval, func() { logStats(logger, container) })
		return nil
	})

	if cfg.WorkerHealthAddr != "" {
		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           healthMux(container),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return healthSrv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped with error", "error", err)
	}
	logger.Info("worker stopped")
}

func every(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

func logStats(logger *slog.Logger, container *app.Container) {
	stats := container.OutboxProcessor.Stats()
	logger.Info("outbox stats",
		"running", stats.Running,
		"published", stats.Published,
		"failed", stats.Failed,
		"dead", stats.Dead,
		"pending", stats.Pending,
		"lag_seconds", stats.LagSeconds,
		"last_error", stats.LastError,
		"focus_task_id", container.Tracker.Last().TopID(),
		"ranked_tasks", len(container.Tracker.Last().Ordered),
		"focus_changes", container.Metrics.GetCounter(observability.MetricFocusChanges),
	)
}

func healthMux(container *app.Container) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		stats := container.OutboxProcessor.Stats()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":            "ok",
			"outbox":            outboxStatus(stats),
			"focus_task_id":     container.Tracker.Last().TopID(),
			"last_processed_at": stats.LastProcessedAt,
		})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		health := container.Health.GetOverallHealth(checkCtx)
		status := http.StatusOK
		if health.Status == observability.HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, health)
	})
	return mux
}

func outboxStatus(stats outbox.Stats) map[string]any {
	return map[string]any{
		"running":   stats.Running,
		"published": stats.Published,
		"failed":    stats.Failed,
		"dead":      stats.Dead,
		"pending":   stats.Pending,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
