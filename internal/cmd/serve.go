package cmd

import (
	"github.com/spf13/cobra"

	cvqmcp "github.com/covquery/cvq/internal/mcp"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [report-dir]",
	Short: "Serve the query surface over MCP (stdio)",
	Long: `Ingest the report directory once, then serve module/instance/
hierarchy queries as MCP tools over stdio.

This is the boundary GUI shells and agents are expected to use instead
of shelling out to the CLI per query: the index is built once and every
tool call is an in-memory exact-key lookup plus one section parse.

Examples:
  cvq serve ./run1
  cvq serve --tools cvq_module,cvq_summary ./run1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

var serveTools []string

func init() {
	serveCmd.Flags().StringSliceVar(&serveTools, "tools", nil, "Tools to expose (default: all)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, cleanup, err := newEngine(runDir(args, 0), cfg, newLogger())
	if err != nil {
		return err
	}
	defer cleanup()

	server, err := cvqmcp.New(engine, cvqmcp.Config{Tools: serveTools})
	if err != nil {
		return err
	}
	return server.ServeStdio()
}
