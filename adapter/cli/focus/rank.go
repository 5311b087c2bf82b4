package focus

import (
	"fmt"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/queries"
	"github.com/spf13/cobra"
)

var rankLimit int

var rankCmd = &cobra.Command{
	Use:     "rank",
	Short:   "Rank the active tasks",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		result, err := app.RankTasksHandler.Handle(cmd.Context(), queries.RankTasksQuery{
			Reload: true,
			Limit:  rankLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to rank tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(result.Tasks) == 0 {
			ui.Info(out, "Nothing to do right now.")
			return nil
		}

		ui.Header(out, fmt.Sprintf("Ranking (%s)", result.Strategy))
		for _, t := range result.Tasks {
			line := fmt.Sprintf("%2d. %s %s %s %s",
				t.Rank,
				ui.Muted.Render(ui.ShortID(t.ID)),
				ui.Badge(t.Priority),
				t.Text,
				ui.Muted.Render(fmt.Sprintf("%.3f", t.Score)),
			)
			if t.Rank == 1 {
				line = ui.FocusText.Render(ui.IconFocus) + line
			} else {
				line = "  " + line
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", 0, "max number of tasks to show (0 = no limit)")
}
