package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string

	// InputFormat represents the on-disk format of an input table.
	InputFormat string

	// SkipReason explains why a group or a combination produced no data.
	SkipReason string

	// ViewKind is the state of the navigation machine.
	ViewKind string

	// SnapshotFormat is the file format of a rendered view snapshot.
	SnapshotFormat string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All input formats supported.
const (
	AutoInput    InputFormat = "auto" // default, picks by file extension
	CSVInput     InputFormat = "csv"
	ParquetInput InputFormat = "parquet"
)

// Reasons recorded when a group or a whole combination degrades.
const (
	SkipNone              SkipReason = ""
	SkipMissingCenter     SkipReason = "missing_center"     // group has no center value for x or y
	SkipEmptyIntersection SkipReason = "empty_intersection" // no point has both x and y
	SkipGroupError        SkipReason = "group_error"        // group computation failed
	SkipEmptyCombination  SkipReason = "empty_combination"  // no group survived
	SkipCombinationError  SkipReason = "combination_error"  // combination computation failed
)

// Navigation states.
const (
	OverviewView ViewKind = "overview"
	DetailView   ViewKind = "detail"
)

// Snapshot formats.
const (
	HTMLSnapshot SnapshotFormat = "html"
	PNGSnapshot  SnapshotFormat = "png"
)

// Defaults shared by the engine and the renderers.
const (
	DefaultScale         = 10
	DefaultMinMarkerSize = 10
	DefaultShadeColor    = "#CCCCCC"
	DefaultDetailMarker  = "P2d"
	DefaultXMetric       = "Respondent count (fixation dwells)"
	DefaultYMetric       = "Dwell time (fixation, ms)"
	NoDataMessage        = "No data available for this metric combination"
)

// CanonicalGroups are the color families known out of the box, in display order.
var CanonicalGroups = []GroupName{"Reds", "Greens", "Oranges", "Yellows", "Whites", "Lavenders", "Blues"}

// CanonicalColors maps each canonical group to its display color.
var CanonicalColors = map[GroupName]string{
	"Reds":      "#EDCCD5",
	"Greens":    "#C3E9CB",
	"Oranges":   "#F7D0B7",
	"Yellows":   "#FFEEC4",
	"Whites":    "#F9F9FA",
	"Lavenders": "#D9C8E5",
	"Blues":     "#C0E3F6",
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidInputFormats lists all valid input formats.
var ValidInputFormats = map[InputFormat]struct{}{
	AutoInput:    {},
	CSVInput:     {},
	ParquetInput: {},
}

// ValidSnapshotFormats lists all valid snapshot formats.
var ValidSnapshotFormats = map[SnapshotFormat]struct{}{
	HTMLSnapshot: {},
	PNGSnapshot:  {},
}
