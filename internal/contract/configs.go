package contract

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/solarcorr/schema"
	"github.com/sirupsen/logrus"
)

// Default values for configuration.
const (
	DefaultHalfWidth  = "6 hours"
	DefaultPrecision  = 3
	MaxPrecision      = 10
	DefaultLogLevel   = "info"
	DefaultTimeZone   = "UTC"
	DefaultParams     = "MEANPOT"
	DefaultAggregator = string(schema.MaxAgg)
)

// DefaultWorkers is the default number of concurrent joins.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// identifierRe matches the table and column names that may be interpolated into queries.
var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config holds the runtime configuration for an analysis.
// This struct remains the "final, validated" config.
type Config struct {
	CatalogPath string
	Location    *time.Location // Zone of naive catalog and store timestamps

	Aggregator schema.Aggregator
	HalfWidth  time.Duration
	Params     []string
	Workers    int

	DenseBackend   schema.DatabaseBackend
	DenseDBConnect string // Please use env var as this is plaintext
	DenseTable     string
	TimeColumn     string
	StartTime      time.Time // Zero means unbounded
	EndTime        time.Time // Zero means unbounded

	X    schema.Field
	Y    schema.Field
	LogX bool

	Numerator   string
	Denominator string
	Against     string // Empty means correlate the ratio with CBI through the join

	Phases []schema.Phase

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	UseColors  bool
	LogLevel   logrus.Level
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Catalog        string `mapstructure:"catalog"`
	TimeZone       string `mapstructure:"tz"`
	DenseBackend   string `mapstructure:"dense-backend"`
	DenseDBConnect string `mapstructure:"dense-db-connect"`
	DenseTable     string `mapstructure:"dense-table"`
	TimeColumn     string `mapstructure:"time-column"`
	Start          string `mapstructure:"start"`
	End            string `mapstructure:"end"`
	Aggregator     string `mapstructure:"aggregator"`
	HalfWidth      string `mapstructure:"half-width"`
	Workers        int    `mapstructure:"workers"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Color          string `mapstructure:"color"`
	LogLevel       string `mapstructure:"log-level"`

	// --- Fields from joinCmd and regressCmd ---
	Params string `mapstructure:"params"`
	X      string `mapstructure:"x"`
	Y      string `mapstructure:"y"`
	LogX   bool   `mapstructure:"log-x"`

	// --- Fields from ratioCmd ---
	Numerator   string `mapstructure:"numerator"`
	Denominator string `mapstructure:"denominator"`
	Against     string `mapstructure:"against"`

	// --- Fields from phasesCmd and the config file ---
	Phases []string `mapstructure:"phases"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processJoinInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := processRegressionFields(cfg, input); err != nil {
		return err
	}
	if err := processRatioInputs(cfg, input); err != nil {
		return err
	}
	return processPhases(cfg, input)
}

// ValidateIdentifier rejects table and column names that are not plain SQL identifiers.
func ValidateIdentifier(kind, name string) error {
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("invalid %s name %q: must match %s", kind, name, identifierRe.String())
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for each dense series backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.CSVBackend:
		if connStr == "" {
			return fmt.Errorf("dense-db-connect is required when using %s backend (path to the file)", backend)
		}
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("dense-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("dense-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.ClickHouseBackend:
		if connStr == "" {
			return fmt.Errorf("dense-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, ":") {
			return fmt.Errorf("ClickHouse address must be host:port, optionally followed by /database")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and runtime fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.CatalogPath = strings.TrimSpace(input.Catalog)
	cfg.OutputFile = input.OutputFile

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 3. Logging and time zone ---
	level, err := logrus.ParseLevel(input.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	cfg.LogLevel = level

	loc, err := time.LoadLocation(input.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid --tz '%s': %w", input.TimeZone, err)
	}
	cfg.Location = loc

	return nil
}

// processJoinInputs validates the aggregator, the half width and the parameter list.
func processJoinInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Aggregator = schema.Aggregator(strings.ToLower(strings.TrimSpace(input.Aggregator)))
	if _, ok := schema.ValidAggregators[cfg.Aggregator]; !ok {
		return fmt.Errorf("invalid aggregator '%s'. must be max, mean, first, min, last, median", input.Aggregator)
	}

	halfWidth, err := ParseHalfWidth(input.HalfWidth)
	if err != nil {
		return fmt.Errorf("invalid --half-width: %w", err)
	}
	cfg.HalfWidth = halfWidth

	cfg.Params = nil
	for p := range strings.SplitSeq(input.Params, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if err := ValidateIdentifier("parameter", p); err != nil {
			return err
		}
		cfg.Params = append(cfg.Params, p)
	}
	return nil
}

// validateBackendConfig validates the dense series backend and its identifiers.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.DenseBackend = schema.DatabaseBackend(strings.ToLower(input.DenseBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.DenseBackend]; !ok {
		return fmt.Errorf("invalid dense backend '%s'. must be sqlite, mysql, postgresql, clickhouse, csv", input.DenseBackend)
	}
	cfg.DenseDBConnect = input.DenseDBConnect

	cfg.DenseTable = input.DenseTable
	if cfg.DenseTable == "" {
		cfg.DenseTable = schema.DefaultDenseTable
	}
	if err := ValidateIdentifier("table", cfg.DenseTable); err != nil {
		return err
	}
	cfg.TimeColumn = input.TimeColumn
	if cfg.TimeColumn == "" {
		cfg.TimeColumn = schema.DefaultTimeColumn
	}
	return ValidateIdentifier("column", cfg.TimeColumn)
}

// processTimeRange parses the optional bounds applied to dense queries.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	cfg.StartTime, cfg.EndTime = time.Time{}, time.Time{}

	if input.Start != "" {
		t, err := ParseTimestamp(input.Start, cfg.Location)
		if err != nil {
			return fmt.Errorf("invalid start date format for '%s': %w", input.Start, err)
		}
		cfg.StartTime = t
	}
	if input.End != "" {
		t, err := ParseTimestamp(input.End, cfg.Location)
		if err != nil {
			return fmt.Errorf("invalid end date format for '%s': %w", input.End, err)
		}
		cfg.EndTime = t
	}

	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}
	return nil
}

// processRegressionFields validates the x and y fields of the regress command.
func processRegressionFields(cfg *Config, input *ConfigRawInput) error {
	cfg.X = schema.Field(strings.ToLower(strings.TrimSpace(input.X)))
	cfg.Y = schema.Field(strings.ToLower(strings.TrimSpace(input.Y)))
	for _, f := range []schema.Field{cfg.X, cfg.Y} {
		if _, ok := schema.ValidFields[f]; !ok {
			return fmt.Errorf("invalid field '%s'. must be cbi, velocity, intensity, param", f)
		}
	}
	if cfg.X == cfg.Y {
		return fmt.Errorf("x and y must differ (both are %s)", cfg.X)
	}
	cfg.LogX = input.LogX
	return nil
}

// processRatioInputs validates the parameter names of the ratio command.
func processRatioInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Numerator = strings.TrimSpace(input.Numerator)
	cfg.Denominator = strings.TrimSpace(input.Denominator)
	cfg.Against = strings.TrimSpace(input.Against)
	for kind, name := range map[string]string{"numerator": cfg.Numerator, "denominator": cfg.Denominator, "against": cfg.Against} {
		if name == "" {
			continue
		}
		if err := ValidateIdentifier(kind, name); err != nil {
			return err
		}
	}
	return nil
}

// processPhases parses custom solar-cycle phases, falling back to the SC23/SC24 defaults.
func processPhases(cfg *Config, input *ConfigRawInput) error {
	if len(input.Phases) == 0 {
		cfg.Phases = append([]schema.Phase(nil), schema.DefaultPhases...)
		return nil
	}
	cfg.Phases = nil
	for _, raw := range input.Phases {
		phase, err := ParsePhase(raw)
		if err != nil {
			return err
		}
		cfg.Phases = append(cfg.Phases, phase)
	}
	return nil
}
