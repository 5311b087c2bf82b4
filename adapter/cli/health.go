package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/pkg/observability"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the store and broker connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}

		results := a.Health.Check(cmd.Context())
		names := make([]string, 0, len(results))
		for name := range results {
			names = append(names, name)
		}
		sort.Strings(names)

		out := cmd.OutOrStdout()
		unhealthy := 0
		for _, name := range names {
			r := results[name]
			line := fmt.Sprintf("%s: %s (%s)", name, r.Status, r.Duration.Round(time.Millisecond))
			if r.Status == observability.HealthStatusHealthy {
				ui.Ok(out, line)
				continue
			}
			unhealthy++
			ui.Err(out, line+" "+r.Message)
		}
		if unhealthy > 0 {
			return fmt.Errorf("%d check(s) failing", unhealthy)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
