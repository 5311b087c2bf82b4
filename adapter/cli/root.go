package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// ErrNotInitialized is returned by commands that run before SetApp.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

var (
	verbose bool
	logger  *slog.Logger
)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nudge",
	Short: "Nudge - one task at a time",
	Long: `Nudge keeps a short list of what you meant to do and always
points at the one thing to do next.

Tasks are ranked by priority, reminder cadence, age, due date and
subtasks. Snoozing a task reschedules its reminder; completing it
bumps you up the leaderboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info := commandContext{
			correlationID: uuid.New(),
			startedAt:     time.Now(),
		}
		ctx := context.WithValue(cmd.Context(), commandContextKey{}, info)
		ctx = observability.WithCorrelationID(ctx, info.correlationID.String())
		if app != nil {
			ctx = observability.WithUserID(ctx, app.CurrentUserID)
		}
		cmd.SetContext(ctx)
		logger.DebugContext(ctx, "command start", "command", cmd.CommandPath())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := cmd.Context()
		if app != nil {
			if err := app.Flush(ctx); err != nil {
				logger.WarnContext(ctx, "flush failed", "error", err)
			}
		}
		info, ok := ctx.Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		elapsed := time.Since(info.startedAt)
		logger.DebugContext(ctx, "command end",
			"command", cmd.CommandPath(),
			"duration_ms", elapsed.Milliseconds(),
		)
		if verbose {
			ui.Info(cmd.ErrOrStderr(), fmt.Sprintf("%s took %s (correlation %s)",
				cmd.CommandPath(), elapsed.Round(time.Millisecond), info.correlationID))
		}
	},
}

// Run executes the root command and returns its error.
func Run(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Execute runs the root command and exits non-zero on error.
func Execute(ctx context.Context) {
	if err := Run(ctx); err != nil {
		ui.Err(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print timing and the correlation id of each command")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// RequireApp returns the application or ErrNotInitialized.
func RequireApp() (*App, error) {
	if app == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}
