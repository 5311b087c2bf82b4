package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	internalApp "github.com/felixgeelhaar/nudge/internal/app"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/commands"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/queries"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/services"
	"github.com/felixgeelhaar/nudge/internal/productivity/infrastructure/weightswatch"
	"github.com/felixgeelhaar/nudge/pkg/config"
	"github.com/felixgeelhaar/nudge/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	// Command Handlers
	CreateTaskHandler *commands.CreateTaskHandler
	LifecycleHandler  *commands.LifecycleHandler
	PinTaskHandler    *commands.PinTaskHandler

	// Query Handlers
	ListTasksHandler      *queries.ListTasksHandler
	GetTaskHandler        *queries.GetTaskHandler
	RankTasksHandler      *queries.RankTasksHandler
	ExplainTaskHandler    *queries.ExplainTaskHandler
	CompletedTasksHandler *queries.CompletedTasksHandler
	LeaderboardHandler    *queries.LeaderboardHandler

	// Ranking
	Tracker        *services.FocusTracker
	WeightsWatcher *weightswatch.Watcher
	FocusTick      time.Duration

	Config *config.Config
	Logger *slog.Logger
	Health *observability.HealthRegistry

	// Current user (configured per environment)
	CurrentUserID string

	container *internalApp.Container
}

// NewApp creates a CLI application backed by the container.
func NewApp(c *internalApp.Container) *App {
	return &App{
		CreateTaskHandler:     c.CreateTaskHandler,
		LifecycleHandler:      c.LifecycleHandler,
		PinTaskHandler:        c.PinTaskHandler,
		ListTasksHandler:      c.ListTasksHandler,
		GetTaskHandler:        c.GetTaskHandler,
		RankTasksHandler:      c.RankTasksHandler,
		ExplainTaskHandler:    c.ExplainTaskHandler,
		CompletedTasksHandler: c.CompletedTasksHandler,
		LeaderboardHandler:    c.LeaderboardHandler,
		Tracker:               c.Tracker,
		WeightsWatcher:        c.WeightsWatcher,
		FocusTick:             c.Config.FocusTick,
		Config:                c.Config,
		Logger:                c.Logger,
		Health:                c.Health,
		CurrentUserID:         c.Config.UserID,
		container:             c,
	}
}

// LoadSession refreshes the active set from the store.
func (a *App) LoadSession(ctx context.Context) error {
	_, err := a.container.LoadSession(ctx)
	return err
}

// Flush dispatches due reminders and publishes pending events.
func (a *App) Flush(ctx context.Context) error {
	return a.container.Flush(ctx)
}

// ResolveTaskID expands an id prefix, as printed by the list commands, to
// the full id of one of the current user's tasks.
func (a *App) ResolveTaskID(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", queries.ErrTaskNotFound
	}
	tasks, err := a.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
		UserID: a.CurrentUserID,
		View:   queries.ViewAll,
	})
	if err != nil {
		return "", err
	}

	var matches []string
	for _, t := range tasks {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s: %w", prefix, queries.ErrTaskNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id %q matches %d tasks", prefix, len(matches))
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
