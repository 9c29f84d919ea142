package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/covquery/cvq/internal/output"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats [report-dir]",
	Short: "Show ingestion statistics and per-family availability",
	Long: `Ingest the report directory and print counts, timings, warning
totals, cache status, and any per-family load failures.

Diagnostics are available even when some report families failed to load,
so this is the first stop when a query answers "unavailable".

Examples:
  cvq stats ./run1
  cvq stats --format json ./run1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := resolveFormat(cfg)
	if err != nil {
		return err
	}

	engine, cleanup, err := newEngine(runDir(args, 0), cfg, newLogger())
	if err != nil {
		return err
	}
	defer cleanup()

	if format == output.FormatText {
		output.WriteSummary(os.Stdout, engine.DataSummary())
		output.WriteStats(os.Stdout, engine.PerfStats())
		return nil
	}
	return output.Marshal(os.Stdout, struct {
		Summary any `json:"summary" yaml:"summary"`
		Stats   any `json:"stats" yaml:"stats"`
	}{engine.DataSummary(), engine.PerfStats()}, format)
}
