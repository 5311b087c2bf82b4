package focus

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/queries"
	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain [id]",
	Short: "Show how a task's score is made up",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if _, err := app.RankTasksHandler.Handle(ctx, queries.RankTasksQuery{Reload: true}); err != nil {
			return fmt.Errorf("failed to rank tasks: %w", err)
		}
		id, err := app.ResolveTaskID(ctx, args[0])
		if err != nil {
			return err
		}
		dto, err := app.ExplainTaskHandler.Handle(ctx, queries.ExplainTaskQuery{TaskID: id})
		if err != nil {
			return fmt.Errorf("failed to explain task: %w", err)
		}

		out := cmd.OutOrStdout()
		ui.Header(out, dto.Text)
		if dto.Rank > 0 {
			ui.Kv(out, "rank", strconv.Itoa(dto.Rank))
		} else {
			ui.Kv(out, "rank", "not ranked")
		}
		ui.Kv(out, "score", fmt.Sprintf("%.3f", dto.Score))

		keys := make([]string, 0, len(dto.Breakdown))
		for k := range dto.Breakdown {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ui.Kv(out, k, fmt.Sprintf("%.3f", dto.Breakdown[k]))
		}
		return nil
	},
}
