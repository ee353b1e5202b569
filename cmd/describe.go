package cmd

import (
	"github.com/huangsam/solarcorr/core"
	"github.com/spf13/cobra"
)

// describeCmd summarizes the catalog fields.
var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Summarize the catalog and correlate two of its fields.",
	Long: `Print summary statistics for CBI, velocity and intensity together with
the Pearson correlation of --x and --y.

Examples:
  solarcorr describe --catalog cbi.csv
  solarcorr describe --catalog cbi.csv --x intensity --y cbi --output json`,
	Args:    cobra.NoArgs,
	PreRunE: catalogSetupWrapper,
	Run:     runExecutor(core.ExecuteDescribe, "Cannot describe catalog"),
}
