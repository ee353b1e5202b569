package cmd

import (
	"github.com/huangsam/solarcorr/core"
	"github.com/spf13/cobra"
)

// regressCmd fits the manual and oracle regressions side by side.
var regressCmd = &cobra.Command{
	Use:   "regress",
	Short: "Fit a linear regression twice and compare the two fits.",
	Long: `Fit y on x with a hand-written least-squares routine and with gonum,
then report both fits and their differences.

Differences below 1e-6 are shown as zero. A fit that fails on only one of
the two paths is reported as an error.

When x or y is "param", each parameter from --params is joined against the
catalog first and only matched events take part in the fit.

Examples:
  # CBI against peak MEANPOT
  solarcorr regress --catalog cbi.csv --dense-db-connect swan.db

  # CBI against log10 of the event velocity, catalog only
  solarcorr regress --catalog cbi.csv --x velocity --log-x`,
	Args:    cobra.NoArgs,
	PreRunE: catalogSetupWrapper,
	Run:     runExecutor(core.ExecuteRegress, "Cannot run regression"),
}
