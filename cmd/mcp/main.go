// Command nudge-mcp serves the nudge tools to MCP clients and runs the
// reminder dispatcher and outbox processor alongside.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/internal/app"
	mcpserver "github.com/felixgeelhaar/nudge/internal/mcp"
	"github.com/felixgeelhaar/nudge/pkg/config"
	"github.com/felixgeelhaar/nudge/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger(observability.DefaultLogConfig()).Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg, "nudge-mcp", cli.Version, os.Stdout)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize container: %w", err)
	}
	defer container.Close()

	cliApp := cli.NewApp(container)
	if err := cliApp.LoadSession(ctx); err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.OutboxProcessorEnabled {
		g.Go(func() error { return container.OutboxProcessor.Run(ctx) })
	}
	g.Go(func() error { return container.ReminderDispatcher.Run(ctx, cfg.ReminderPollInterval) })
	g.Go(func() error { return mcpserver.Serve(ctx, cfg, cliApp, logger) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
