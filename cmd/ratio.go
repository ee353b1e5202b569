package cmd

import (
	"github.com/huangsam/solarcorr/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ratioCmd correlates a ratio of two dense parameters.
var ratioCmd = &cobra.Command{
	Use:   "ratio",
	Short: "Correlate the ratio of two dense parameters.",
	Long: `Divide --numerator by --denominator at every shared timestamp and
correlate the result. Non-finite ratios are dropped.

With --against the ratio is aligned with a third dense parameter by
timestamp. Without it the ratio is joined against the catalog and
correlated with CBI.

Examples:
  solarcorr ratio --catalog cbi.csv --dense-db-connect swan.db \
    --numerator TOTUSJZ --denominator USFLUX
  solarcorr ratio --catalog cbi.csv --dense-db-connect swan.db \
    --numerator TOTUSJZ --denominator USFLUX --against MEANPOT`,
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("against") != "" {
			return sharedSetupWrapper(cmd, args)
		}
		return catalogSetupWrapper(cmd, args)
	},
	Run: runExecutor(core.ExecuteRatio, "Cannot run ratio analysis"),
}
