package focus

import (
	"fmt"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/commands"
	"github.com/spf13/cobra"
)

var pinCmd = &cobra.Command{
	Use:   "pin [id]",
	Short: "Keep a task on top until it is done or unpinned",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := app.LoadSession(ctx); err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}
		id, err := app.ResolveTaskID(ctx, args[0])
		if err != nil {
			return err
		}
		if err := app.PinTaskHandler.Handle(ctx, commands.PinTaskCommand{TaskID: id}); err != nil {
			return fmt.Errorf("failed to pin task: %w", err)
		}

		if top := app.Tracker.Last().Top; top != nil && top.Task.ID() == id {
			ui.Ok(cmd.OutOrStdout(), "pinned: "+top.Task.Text())
			return nil
		}
		ui.Warn(cmd.OutOrStdout(), "pinned, but another task still ranks higher")
		return nil
	},
}

var unpinCmd = &cobra.Command{
	Use:   "unpin",
	Short: "Clear the pinned task",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := app.LoadSession(ctx); err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}
		if err := app.PinTaskHandler.Handle(ctx, commands.PinTaskCommand{}); err != nil {
			return fmt.Errorf("failed to unpin: %w", err)
		}
		ui.Ok(cmd.OutOrStdout(), "unpinned")
		return nil
	},
}
