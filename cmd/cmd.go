// Package cmd defines the command-line interface for solarcorr.
package cmd

import (
	"github.com/huangsam/solarcorr/internal/contract"
	"github.com/huangsam/solarcorr/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(regressCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(phasesCmd)
	rootCmd.AddCommand(ratioCmd)
	rootCmd.AddCommand(versionCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("catalog", "", "Path to the CBI event catalog (.csv or .csv.gz)")
	rootCmd.PersistentFlags().String("tz", contract.DefaultTimeZone, "IANA time zone for timestamps without an offset")
	rootCmd.PersistentFlags().String("dense-backend", string(schema.SQLiteBackend), "Dense series backend: sqlite or mysql or postgresql or clickhouse or csv")
	rootCmd.PersistentFlags().String("dense-db-connect", "", "Connection string or file path for the dense backend")
	rootCmd.PersistentFlags().String("dense-table", schema.DefaultDenseTable, "Table holding the dense parameters")
	rootCmd.PersistentFlags().String("time-column", schema.DefaultTimeColumn, "Timestamp column of the dense table")
	rootCmd.PersistentFlags().String("start", "", "Only load dense samples at or after this time")
	rootCmd.PersistentFlags().String("end", "", "Only load dense samples at or before this time")
	rootCmd.PersistentFlags().StringP("aggregator", "a", contract.DefaultAggregator, "Window aggregator: max or mean or first or min or last or median")
	rootCmd.PersistentFlags().StringP("half-width", "w", contract.DefaultHalfWidth, "Half width of the window around each event (e.g. 6 hours, 90m)")
	rootCmd.PersistentFlags().StringP("params", "p", contract.DefaultParams, "Comma-separated dense parameters to join")
	rootCmd.PersistentFlags().String("x", string(schema.ParamField), "Regressor or first correlated field: param or cbi or velocity or intensity")
	rootCmd.PersistentFlags().String("y", string(schema.CBIField), "Response or second correlated field: param or cbi or velocity or intensity")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent joins")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of regressCmd to Viper
	regressCmd.Flags().Bool("log-x", false, "Regress on log10 of the regressor, dropping non-positive pairs")
	if err := viper.BindPFlags(regressCmd.Flags()); err != nil {
		contract.LogFatal("Error binding regress flags", err)
	}

	// Bind all flags of phasesCmd to Viper
	phasesCmd.Flags().StringSlice("phases", nil, "Phases as name:YYYY-MM-DD:YYYY-MM-DD (repeatable)")
	if err := viper.BindPFlags(phasesCmd.Flags()); err != nil {
		contract.LogFatal("Error binding phases flags", err)
	}

	// Bind all flags of ratioCmd to Viper
	ratioCmd.Flags().String("numerator", "", "Dense parameter used as the numerator")
	ratioCmd.Flags().String("denominator", "", "Dense parameter used as the denominator")
	ratioCmd.Flags().String("against", "", "Dense parameter to correlate with; empty joins the ratio against CBI")
	if err := viper.BindPFlags(ratioCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ratio flags", err)
	}
}
