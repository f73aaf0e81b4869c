package contract

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/gazeplot/schema"
)

// Default values for configuration.
const (
	DefaultPrecision    = 2
	MaxPrecision        = 10
	DefaultArtifactFile = "eye_tracking_data_viz.html"
	DefaultExportFile   = "points.parquet"
	DefaultSnapshotBase = "snapshot"
	DefaultTitle        = "Eye Tracking Data Visualisation"
	DefaultProgressStep = 50
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// hexColorPattern matches #RRGGBB colors.
var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Columns names the label columns of the input tables.
type Columns struct {
	Feeling       string // aggregate table: feeling of each row
	Group         string // aggregate table: group of each row
	Parent        string // point table: label carrying detail marker, feeling and group tokens
	Label         string // point table: label whose last "_" token is the point id
	ChoiceName    string // choice table: point id that was clicked
	ChoiceFeeling string // choice table: feeling the click was made for
	PaletteName   string // palette table: point id
	PaletteHex    string // palette table: shade of the point
}

// DefaultColumns returns the column names used by the survey exports.
func DefaultColumns() Columns {
	return Columns{
		Feeling:       "Feeling",
		Group:         "Group",
		Parent:        "Parent Label",
		Label:         "Label_modified",
		ChoiceName:    "OA Name",
		ChoiceFeeling: "Word_EmotionOrBenefit",
		PaletteName:   "Nom Teinte",
		PaletteHex:    "HEX",
	}
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	GroupsFile  string
	PointsFile  string
	ChoicesFile string
	PaletteFile string // optional
	InputFormat schema.InputFormat
	Columns     Columns

	DetailMarker  string
	Palette       map[schema.GroupName]string
	Scale         int
	MinMarkerSize int
	DefaultX      schema.MetricID
	DefaultY      schema.MetricID

	Workers      int
	ProgressStep int
	Precision    int
	Output       schema.OutputMode
	OutputFile   string
	ArtifactFile string // --out; empty selects the command's default file
	Title        string
	Report       bool
	Summary      bool
	Watch        bool
	Width        int // Terminal width override (0 = auto-detect)

	// View selection for view, snapshot and explore
	Feeling        schema.FeelingID
	ViewX          schema.MetricID
	ViewY          schema.MetricID
	Group          schema.GroupName
	SnapshotFormat schema.SnapshotFormat

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Input tables ---
	GroupsFile  string `mapstructure:"groups-file"`
	PointsFile  string `mapstructure:"points-file"`
	ChoicesFile string `mapstructure:"choices-file"`
	PaletteFile string `mapstructure:"palette-file"`
	InputFormat string `mapstructure:"input-format"`

	// --- Column names ---
	FeelingColumn       string `mapstructure:"feeling-column"`
	GroupColumn         string `mapstructure:"group-column"`
	ParentColumn        string `mapstructure:"parent-column"`
	LabelColumn         string `mapstructure:"label-column"`
	ChoiceNameColumn    string `mapstructure:"choice-name-column"`
	ChoiceFeelingColumn string `mapstructure:"choice-feeling-column"`
	PaletteNameColumn   string `mapstructure:"palette-name-column"`
	PaletteHexColumn    string `mapstructure:"palette-hex-column"`

	// --- Engine ---
	DetailMarker  string            `mapstructure:"detail-marker"`
	Scale         int               `mapstructure:"scale"`
	MinMarkerSize int               `mapstructure:"min-marker-size"`
	DefaultX      string            `mapstructure:"default-x"`
	DefaultY      string            `mapstructure:"default-y"`
	Palette       map[string]string `mapstructure:"palette"`

	// --- Fields from rootCmd.PersistentFlags() ---
	Workers       int    `mapstructure:"workers"`
	ProgressStep  int    `mapstructure:"progress-step"`
	Precision     int    `mapstructure:"precision"`
	Output        string `mapstructure:"output"`
	OutputFile    string `mapstructure:"output-file"`
	Width         int    `mapstructure:"width"`
	Color         string `mapstructure:"color"`
	CacheBackend  string `mapstructure:"cache-backend"`
	CacheDBConn   string `mapstructure:"cache-db-connect"`
	RunsBackend   string `mapstructure:"runs-backend"`
	RunsDBConnect string `mapstructure:"runs-db-connect"`

	// --- Fields from buildCmd.Flags() ---
	Out    string `mapstructure:"out"`
	Title  string `mapstructure:"title"`
	Report bool   `mapstructure:"report"`
	Watch  bool   `mapstructure:"watch"`

	// --- Fields from metricsCmd.Flags() ---
	Summary bool `mapstructure:"summary"`

	// --- Fields from viewCmd/snapshotCmd.Flags() ---
	Feeling string `mapstructure:"feeling"`
	X       string `mapstructure:"x"`
	Y       string `mapstructure:"y"`
	Group   string `mapstructure:"group"`
	Format  string `mapstructure:"format"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Palette != nil {
		clone.Palette = make(map[schema.GroupName]string, len(c.Palette))
		maps.Copy(clone.Palette, c.Palette)
	}
	return &clone
}

// InputFiles returns the configured input files in load order, skipping unset ones.
func (c *Config) InputFiles() []string {
	var files []string
	for _, f := range []string{c.GroupsFile, c.PointsFile, c.ChoicesFile, c.PaletteFile} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// OutPath returns the --out path, or fallback when none was given.
func (c *Config) OutPath(fallback string) string {
	if c.ArtifactFile != "" {
		return c.ArtifactFile
	}
	return fallback
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processInputFiles(cfg, input); err != nil {
		return err
	}
	if err := processColumns(cfg, input); err != nil {
		return err
	}
	if err := processEngineSettings(cfg, input); err != nil {
		return err
	}
	if err := processPalette(cfg, input); err != nil {
		return err
	}
	if err := processSelection(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// validateSimpleInputs checks output, concurrency and display settings.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}
	cfg.Workers = input.Workers

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d", MaxPrecision)
	}
	cfg.Precision = input.Precision

	cfg.ProgressStep = input.ProgressStep
	if cfg.ProgressStep <= 0 {
		cfg.ProgressStep = DefaultProgressStep
	}

	cfg.Output = schema.OutputMode(strings.ToLower(strings.TrimSpace(input.Output)))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet", input.Output)
	}
	cfg.OutputFile = strings.TrimSpace(input.OutputFile)

	if input.Width < 0 {
		return fmt.Errorf("width must be 0 (auto) or a positive number")
	}
	cfg.Width = input.Width

	cfg.UseColors = true
	if input.Color != "" {
		useColors, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid color value: %w", err)
		}
		cfg.UseColors = useColors
	}
	color.NoColor = !cfg.UseColors

	cfg.ArtifactFile = strings.TrimSpace(input.Out)
	cfg.Title = strings.TrimSpace(input.Title)
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	cfg.Report = input.Report
	cfg.Summary = input.Summary
	cfg.Watch = input.Watch
	return nil
}

// processInputFiles resolves the input tables and their format.
func processInputFiles(cfg *Config, input *ConfigRawInput) error {
	required := []struct {
		flag string
		val  string
		dst  *string
	}{
		{"groups-file", input.GroupsFile, &cfg.GroupsFile},
		{"points-file", input.PointsFile, &cfg.PointsFile},
		{"choices-file", input.ChoicesFile, &cfg.ChoicesFile},
	}
	for _, r := range required {
		path := strings.TrimSpace(r.val)
		if path == "" {
			return fmt.Errorf("--%s is required", r.flag)
		}
		if err := checkReadable(path); err != nil {
			return fmt.Errorf("--%s: %w", r.flag, err)
		}
		*r.dst = path
	}

	cfg.PaletteFile = strings.TrimSpace(input.PaletteFile)
	if cfg.PaletteFile != "" {
		if err := checkReadable(cfg.PaletteFile); err != nil {
			return fmt.Errorf("--palette-file: %w", err)
		}
	}

	cfg.InputFormat = schema.InputFormat(strings.ToLower(strings.TrimSpace(input.InputFormat)))
	if cfg.InputFormat == "" {
		cfg.InputFormat = schema.AutoInput
	}
	if _, ok := schema.ValidInputFormats[cfg.InputFormat]; !ok {
		return fmt.Errorf("invalid input format '%s'. must be auto, csv, parquet", input.InputFormat)
	}
	return nil
}

// checkReadable verifies that path exists and is a regular file.
func checkReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// processColumns overlays user-provided column names on the defaults.
func processColumns(cfg *Config, input *ConfigRawInput) error {
	cols := DefaultColumns()
	overrides := []struct {
		val string
		dst *string
	}{
		{input.FeelingColumn, &cols.Feeling},
		{input.GroupColumn, &cols.Group},
		{input.ParentColumn, &cols.Parent},
		{input.LabelColumn, &cols.Label},
		{input.ChoiceNameColumn, &cols.ChoiceName},
		{input.ChoiceFeelingColumn, &cols.ChoiceFeeling},
		{input.PaletteNameColumn, &cols.PaletteName},
		{input.PaletteHexColumn, &cols.PaletteHex},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(o.val); v != "" {
			*o.dst = v
		}
	}
	if cols.Feeling == cols.Group {
		return fmt.Errorf("feeling-column and group-column must differ (both %q)", cols.Feeling)
	}
	cfg.Columns = cols
	return nil
}

// processEngineSettings validates sizing and default axes.
func processEngineSettings(cfg *Config, input *ConfigRawInput) error {
	cfg.DetailMarker = strings.TrimSpace(input.DetailMarker)
	if cfg.DetailMarker == "" {
		cfg.DetailMarker = schema.DefaultDetailMarker
	}

	cfg.Scale = input.Scale
	if cfg.Scale == 0 {
		cfg.Scale = schema.DefaultScale
	}
	if cfg.Scale < 0 {
		return fmt.Errorf("scale must be positive (received %d)", input.Scale)
	}

	cfg.MinMarkerSize = input.MinMarkerSize
	if cfg.MinMarkerSize == 0 {
		cfg.MinMarkerSize = schema.DefaultMinMarkerSize
	}
	if cfg.MinMarkerSize < 0 {
		return fmt.Errorf("min-marker-size must be positive (received %d)", input.MinMarkerSize)
	}

	cfg.DefaultX = schema.MetricID(input.DefaultX)
	if cfg.DefaultX == "" {
		cfg.DefaultX = schema.DefaultXMetric
	}
	cfg.DefaultY = schema.MetricID(input.DefaultY)
	if cfg.DefaultY == "" {
		cfg.DefaultY = schema.DefaultYMetric
	}
	return nil
}

// processPalette merges custom group colors over the canonical ones.
func processPalette(cfg *Config, input *ConfigRawInput) error {
	palette := make(map[schema.GroupName]string, len(schema.CanonicalColors)+len(input.Palette))
	maps.Copy(palette, schema.CanonicalColors)
	for name, hex := range input.Palette {
		hex = strings.TrimSpace(hex)
		if !hexColorPattern.MatchString(hex) {
			return fmt.Errorf("palette color for %q must look like #RRGGBB (received %q)", name, hex)
		}
		// viper lowercases map keys, so match canonical names case-insensitively
		key := schema.GroupName(name)
		for canonical := range schema.CanonicalColors {
			if strings.EqualFold(string(canonical), name) {
				key = canonical
			}
		}
		palette[key] = strings.ToUpper(hex)
	}
	cfg.Palette = palette
	return nil
}

// processSelection handles the view selection used by view, snapshot and explore.
func processSelection(cfg *Config, input *ConfigRawInput) error {
	cfg.Feeling = schema.FeelingID(strings.TrimSpace(input.Feeling))
	cfg.ViewX = schema.MetricID(input.X)
	cfg.ViewY = schema.MetricID(input.Y)
	cfg.Group = schema.GroupName(strings.TrimSpace(input.Group))

	cfg.SnapshotFormat = schema.SnapshotFormat(strings.ToLower(strings.TrimSpace(input.Format)))
	if cfg.SnapshotFormat == "" {
		cfg.SnapshotFormat = schema.HTMLSnapshot
	}
	if _, ok := schema.ValidSnapshotFormats[cfg.SnapshotFormat]; !ok {
		return fmt.Errorf("invalid snapshot format '%s'. must be html, png", input.Format)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConn
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Runs Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return err
	}

	// Validate that cache and runs use different databases
	if cfg.CacheBackend == cfg.RunsBackend && cfg.CacheBackend != schema.NoneBackend {
		if cfg.CacheBackend == schema.SQLiteBackend {
			cachePath := cfg.CacheDBConnect
			if cachePath == "" {
				cachePath = GetCacheDBFilePath()
			}
			runsPath := cfg.RunsDBConnect
			if runsPath == "" {
				runsPath = GetRunsDBFilePath()
			}
			if filepath.Clean(cachePath) == filepath.Clean(runsPath) {
				return fmt.Errorf("cache and runs storage must use different SQLite database files. Both resolve to %q", cachePath)
			}
		} else if cfg.CacheDBConnect == cfg.RunsDBConnect {
			return fmt.Errorf("cache and runs storage must use different databases")
		}
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
