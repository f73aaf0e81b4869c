// Package cmd defines the command-line interface for gazeplot.
package cmd

import (
	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// addSelectionFlags adds the flags that pick a feeling, axes and group.
func addSelectionFlags(fs *pflag.FlagSet) {
	fs.String("feeling", "", "Feeling to show (defaults to the first feeling)")
	fs.String("x", "", "Metric on the x axis (defaults to --default-x)")
	fs.String("y", "", "Metric on the y axis (defaults to --default-y)")
	fs.String("group", "", "Group to drill into (omit for the overview)")
}

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	pf := rootCmd.PersistentFlags()
	pf.String("groups-file", "", "Aggregate table with one row per feeling and group")
	pf.String("points-file", "", "Point table with one row per point and parent label")
	pf.String("choices-file", "", "Click table with one row per click")
	pf.String("palette-file", "", "Optional table of point shades")
	pf.String("input-format", string(schema.AutoInput), "Input format: auto or csv or parquet")
	pf.String("feeling-column", "", "Aggregate table column holding the feeling")
	pf.String("group-column", "", "Aggregate table column holding the group")
	pf.String("parent-column", "", "Point table column holding the parent label")
	pf.String("label-column", "", "Point table column holding the point label")
	pf.String("choice-name-column", "", "Click table column holding the clicked point")
	pf.String("choice-feeling-column", "", "Click table column holding the feeling")
	pf.String("palette-name-column", "", "Palette table column holding the point name")
	pf.String("palette-hex-column", "", "Palette table column holding the shade")
	pf.String("detail-marker", schema.DefaultDetailMarker, "Parent label token that marks detail rows")
	pf.Int("scale", schema.DefaultScale, "Marker size per click")
	pf.Int("min-marker-size", schema.DefaultMinMarkerSize, "Marker size of groups and points without clicks")
	pf.String("default-x", schema.DefaultXMetric, "Metric on the x axis of the initial view")
	pf.String("default-y", schema.DefaultYMetric, "Metric on the y axis of the initial view")
	pf.Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	pf.Int("progress-step", contract.DefaultProgressStep, "Report build progress every N combinations")
	pf.String("output", string(schema.TextOut), "Output format: text or csv or json or yaml or parquet")
	pf.String("output-file", "", "Optional path to write output to")
	pf.Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	pf.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	pf.Int("width", 0, "Terminal width override (0 = auto-detect)")
	pf.String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	pf.String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	pf.String("runs-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	pf.String("runs-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	pf.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	pf.String("config", "", "Path to config file")
	if err := viper.BindPFlags(pf); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	buildCmd.Flags().String("out", "", "Path of the HTML page (default "+contract.DefaultArtifactFile+")")
	buildCmd.Flags().String("title", contract.DefaultTitle, "Title of the HTML page")
	buildCmd.Flags().Bool("report", false, "Print every degraded combination")
	buildCmd.Flags().Bool("watch", false, "Rebuild whenever an input file changes")

	metricsCmd.Flags().Bool("summary", false, "Print count, mean, spread and range of every metric")

	addSelectionFlags(viewCmd.Flags())

	addSelectionFlags(snapshotCmd.Flags())
	snapshotCmd.Flags().String("format", string(schema.HTMLSnapshot), "Snapshot format: html or png")
	snapshotCmd.Flags().String("out", "", "Path of the snapshot (default "+contract.DefaultSnapshotBase+".<format>)")

	exportCmd.Flags().String("out", "", "Path of the Parquet file (default "+contract.DefaultExportFile+")")

	addSelectionFlags(exploreCmd.Flags())
	exploreCmd.Flags().String("title", contract.DefaultTitle, "Title shown above the explorer")

	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
