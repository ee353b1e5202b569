package cmd

import (
	"github.com/huangsam/solarcorr/core"
	"github.com/spf13/cobra"
)

// joinCmd aggregates dense parameters around every catalog event.
var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Aggregate dense parameters in a window around each CME event.",
	Long: `Match each event of the CBI catalog against one or more dense
magnetic-field parameters.

For every event a closed window of ±half-width is placed around the event
time and the samples inside it are reduced with the selected aggregator.
Events whose window holds no sample are reported as absent rather than zero.

Examples:
  # Peak MEANPOT within six hours of each event
  solarcorr join --catalog cbi.csv --dense-db-connect swan.db

  # Mean of two parameters over a 90 minute half width
  solarcorr join --catalog cbi.csv --dense-db-connect swan.db \
    --params MEANPOT,TOTUSJZ --aggregator mean --half-width 90m

  # Export the joined table to Parquet
  solarcorr join --catalog cbi.csv --dense-db-connect swan.db \
    --output parquet --output-file joined.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: catalogSetupWrapper,
	Run:     runExecutor(core.ExecuteJoin, "Cannot run join"),
}
