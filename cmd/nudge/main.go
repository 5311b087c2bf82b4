package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/adapter/cli/focus"
	"github.com/felixgeelhaar/nudge/adapter/cli/mcp"
	"github.com/felixgeelhaar/nudge/adapter/cli/task"
	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/internal/app"
	"github.com/felixgeelhaar/nudge/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		ui.Err(os.Stderr, "invalid configuration: "+err.Error())
		os.Exit(1)
	}

	if os.Getenv("NUDGE_LOG_LEVEL") == "" && os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}
	logger := app.NewLogger(cfg, "nudge", cli.Version, os.Stderr)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger, app.WithNotifier(cli.PrintNotifier(os.Stdout)))
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		ui.Err(os.Stderr, err.Error())
		os.Exit(1)
	}

	cli.SetApp(cli.NewApp(container))

	cli.AddCommand(task.Cmd)
	cli.AddCommand(focus.Cmd)
	cli.AddCommand(mcp.Cmd)

	code := 0
	if err := cli.Run(ctx); err != nil {
		ui.Err(os.Stderr, err.Error())
		code = 1
	}
	container.Close()
	os.Exit(code)
}
