package cmd

import (
	"github.com/huangsam/solarcorr/core"
	"github.com/spf13/cobra"
)

// phasesCmd groups the catalog by solar cycle phase.
var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "Summarize CBI and velocity per solar cycle phase.",
	Long: `Group catalog events into solar cycle phases and summarize CBI and
velocity within each one. Without --phases the cycle 23 and 24 defaults
are used.

Examples:
  solarcorr phases --catalog cbi.csv
  solarcorr phases --catalog cbi.csv \
    --phases sc24_rise:2009-01-01:2011-12-31 --phases sc24_max:2012-01-01:2014-12-31`,
	Args:    cobra.NoArgs,
	PreRunE: catalogSetupWrapper,
	Run:     runExecutor(core.ExecutePhases, "Cannot run phase analysis"),
}
