package cmd

import (
	"github.com/huangsam/gazeplot/core"
	"github.com/spf13/cobra"
)

// buildCmd builds every combination and writes the HTML page.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Precompute every combination and write the interactive HTML page",
	Long: `Load the aggregate, point and click tables, compute the group centers and point
details of every feeling and metric pair, and embed them in one self-contained HTML page.

The computed store is cached under a fingerprint of the inputs and settings, so an
unchanged rebuild only rewrites the page.

Examples:
  # Build with the default column names
  gazeplot build --groups-file groups.csv --points-file points.csv --choices-file choices.csv

  # Print which combinations lost groups, and why
  gazeplot build --report

  # Rebuild on every save of an input table
  gazeplot build --watch --out viz.html`,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return core.ExecuteBuild(cmd.Context(), cfg, cacheManager)
	},
}

// metricsCmd prints the metric catalog.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "List the metrics that can be plotted",
	Long: `Discover the numeric metrics of the aggregate table, in column order.

With --summary, also print the count, mean, standard deviation and range of each
metric over all groups, and whether it is tracked per point.

Examples:
  gazeplot metrics --summary --output csv`,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return core.ExecuteMetrics(cmd.Context(), cfg)
	},
}

// exportCmd writes every point of every combination to Parquet.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every computed point to a Parquet file",
	Long: `Write one row per point of every feeling and metric pair, with its group,
coordinates, shade, marker size and clicks.

Examples:
  gazeplot export --out points.parquet
  duckdb -c "SELECT feeling, count(*) FROM 'points.parquet' GROUP BY 1"`,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return core.ExecuteExport(cmd.Context(), cfg, cacheManager)
	},
}
