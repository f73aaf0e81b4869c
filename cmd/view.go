package cmd

import (
	"github.com/huangsam/gazeplot/core"
	"github.com/spf13/cobra"
)

// viewCmd prints one view of the chart.
var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print the overview of a feeling or the detail view of one group",
	Long: `Render the chart the HTML page would show for the selected feeling, axes and
group as a table, or as csv, json or yaml.

Examples:
  gazeplot view --feeling Happy --x "Dwell time (fixation, ms)"
  gazeplot view --feeling Happy --group Reds --output json`,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return core.ExecuteView(cmd.Context(), cfg, cacheManager)
	},
}

// snapshotCmd renders one view to a static file.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render one view to a static HTML chart or PNG image",
	Long: `Render the selected view without the navigation controls, for reports and slides.

Examples:
  gazeplot snapshot --feeling Calm --format png --out calm.png
  gazeplot snapshot --feeling Happy --group Reds`,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return core.ExecuteSnapshot(cmd.Context(), cfg, cacheManager)
	},
}

// exploreCmd opens the terminal explorer.
var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Browse the chart interactively in the terminal",
	Long: `Navigate feelings, axes and groups the way the HTML page does.

Keys: enter opens a group, esc goes back, f/x/y cycle the feeling and axes
(shifted to go backwards), q quits.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return core.ExecuteExplore(cmd.Context(), cfg, cacheManager)
	},
}
