package focus

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/services"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const defaultFlushEvery = 15 * time.Second

var flushEvery time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep printing the focus task as it changes",
	Long: `Watch re-ranks on every tick, delivers due reminders and reloads
the priority weights file when it changes. Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := app.LoadSession(ctx); err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}

		out := &lockedWriter{w: cmd.OutOrStdout()}
		show := func(top *services.RankedTask) {
			if top == nil {
				ui.Info(out, "Nothing to do right now.")
				return
			}
			fmt.Fprintln(out, ui.FocusCard(top.Task.Text(), top.Task.Priority().String(), top.Score))
		}
		show(app.Tracker.Recompute().Top)
		unsubscribe := app.Tracker.Subscribe(services.ObserverFuncs{FocusChanged: show})
		defer unsubscribe()

		g, ctx := errgroup.WithContext(ctx)
		if app.WeightsWatcher != nil {
			g.Go(func() error {
				app.WeightsWatcher.Run(ctx)
				return nil
			})
		}
		g.Go(func() error {
			return app.Tracker.Run(ctx, app.FocusTick)
		})
		every := flushEvery
		if every <= 0 {
			every = defaultFlushEvery
		}
		g.Go(func() error {
			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					if err := app.Flush(ctx); err != nil {
						ui.Warn(out, "reminder delivery failed: "+err.Error())
					}
				}
			}
		})

		if err := g.Wait(); err != nil && cmd.Context().Err() == nil {
			return err
		}
		return nil
	},
}

// lockedWriter serializes writes from the tracker and flush goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func init() {
	watchCmd.Flags().DurationVar(&flushEvery, "flush-every", defaultFlushEvery, "how often to deliver due reminders")
}
