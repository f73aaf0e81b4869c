package cmd

import (
	"github.com/huangsam/gazeplot/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the gazeplot MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents list feelings and metrics,
look up computed combinations, and render views of the chart.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(cmd.Context(), cfg, cacheManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
