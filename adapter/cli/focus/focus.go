package focus

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/queries"
	"github.com/spf13/cobra"
)

// Cmd is the focus command group. Without a subcommand it prints the
// current focus task.
var Cmd = &cobra.Command{
	Use:   "focus",
	Short: "Show the one task to do next",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		result, err := app.RankTasksHandler.Handle(cmd.Context(), queries.RankTasksQuery{Reload: true, Limit: 1})
		if err != nil {
			return fmt.Errorf("failed to rank tasks: %w", err)
		}
		printFocus(cmd.OutOrStdout(), result.Focus)
		return nil
	},
}

func init() {
	Cmd.AddCommand(rankCmd)
	Cmd.AddCommand(explainCmd)
	Cmd.AddCommand(pinCmd)
	Cmd.AddCommand(unpinCmd)
	Cmd.AddCommand(watchCmd)
}

func printFocus(w io.Writer, top *queries.RankedTaskDTO) {
	if top == nil {
		ui.Info(w, "Nothing to do right now.")
		return
	}
	fmt.Fprintln(w, ui.FocusCard(top.Text, top.Priority, top.Score))
	ui.Info(w, "id "+ui.ShortID(top.ID))
}
