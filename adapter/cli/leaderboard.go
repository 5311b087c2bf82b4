package cli

import (
	"fmt"

	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/queries"
	"github.com/spf13/cobra"
)

var leaderboardLimit int

var leaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Short:   "Show who completed the most tasks",
	Aliases: []string{"top"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		entries, err := a.LeaderboardHandler.Handle(cmd.Context(), queries.LeaderboardQuery{Limit: leaderboardLimit})
		if err != nil {
			return fmt.Errorf("failed to load leaderboard: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			ui.Info(out, "No completed tasks yet.")
			return nil
		}
		ui.Header(out, ui.IconTrophy+"Leaderboard")
		for _, e := range entries {
			name := e.UserID
			if name == a.CurrentUserID {
				name = ui.FocusText.Render(name + " (you)")
			}
			fmt.Fprintf(out, "%2d. %s %s\n", e.Position, name, ui.Muted.Render(fmt.Sprintf("%d done", e.CompletedCount)))
		}
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().IntVarP(&leaderboardLimit, "limit", "n", queries.DefaultLeaderboardLimit, "number of entries")
	rootCmd.AddCommand(leaderboardCmd)
}
