package cli

import (
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
)

// Set with -ldflags at release time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		ui.Header(out, "nudge "+Version)
		ui.Kv(out, "commit", Commit)
		ui.Kv(out, "built", BuildDate)
		if info, ok := debug.ReadBuildInfo(); ok {
			ui.Kv(out, "go", info.GoVersion)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
