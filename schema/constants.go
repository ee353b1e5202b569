package schema

// Custom string types for type safety.
type (
	// Aggregator represents the rule that reduces a match window to one value.
	Aggregator string

	// OutputMode represents the format of the output.
	OutputMode string

	// Field represents a numeric column that can feed a regression.
	Field string

	// DatabaseBackend represents the store holding the dense parameter series.
	DatabaseBackend string
)

// All aggregators supported by the join engine.
const (
	MaxAgg    Aggregator = "max" // default
	MeanAgg   Aggregator = "mean"
	FirstAgg  Aggregator = "first"
	MinAgg    Aggregator = "min"
	LastAgg   Aggregator = "last"
	MedianAgg Aggregator = "median"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All regression fields supported.
const (
	CBIField       Field = "cbi"       // median coronal brightness
	VelocityField  Field = "velocity"  // corrected CME velocity
	IntensityField Field = "intensity" // flare intensity derived from class
	ParamField     Field = "param"     // joined dense parameter value
)

// All dense series backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	ClickHouseBackend DatabaseBackend = "clickhouse"
	CSVBackend        DatabaseBackend = "csv"
)

// DefaultDenseTable is the SWAN-SF table that holds the magnetic-field parameters.
const DefaultDenseTable = "solar_flare_data"

// DefaultTimeColumn is the timestamp column of DefaultDenseTable.
const DefaultTimeColumn = "Timestamp"

// SnapTolerance is the magnitude under which manual-vs-oracle deltas are reported as 0.0.
const SnapTolerance = 1e-6

// MinRegressionSamples is the smallest paired sample a regression accepts.
const MinRegressionSamples = 3

// AllAggregators returns a list of all supported aggregators.
var AllAggregators = []Aggregator{MaxAgg, MeanAgg, FirstAgg, MinAgg, LastAgg, MedianAgg}

// ValidAggregators lists all valid aggregators.
var ValidAggregators = map[Aggregator]struct{}{
	MaxAgg:    {},
	MeanAgg:   {},
	FirstAgg:  {},
	MinAgg:    {},
	LastAgg:   {},
	MedianAgg: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidFields lists all valid regression fields.
var ValidFields = map[Field]struct{}{
	CBIField:       {},
	VelocityField:  {},
	IntensityField: {},
	ParamField:     {},
}

// ValidDatabaseBackends lists all valid dense series backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	ClickHouseBackend: {},
	CSVBackend:        {},
}
