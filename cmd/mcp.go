package cmd

import (
	"github.com/huangsam/solarcorr/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the solarcorr MCP server",
	Long: `Launch an MCP server over stdio that exposes the regression comparison,
the event join and the summary statistics as tools. Flags such as
--aggregator, --half-width and --tz become the tool defaults.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		// stdout carries the protocol, so results must never be colored.
		cfg.UseColors = false
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
