// Package cmd contains all CLI commands for cvq.
package cmd

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var (
	// Version is the current version of cvq
	Version = "0.1.0"

	// Global flags
	verbose      bool
	configPath   string
	outputFormat string
	noCache      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cvq",
	Short: "Query hardware-verification coverage reports",
	Long: `cvq ingests the plain-text coverage reports a hardware-verification
coverage tool writes per run and answers exact-key queries against them
without reparsing the files.

It builds a byte-offset index over the module/instance detail report once,
then serves each lookup by seeking straight to one section; the design
hierarchy and module inventory listings are reconstructed into queryable
trees from their indentation.

Main capabilities:
  - Show a module's or instance's detail section by exact name or path
  - Walk the design hierarchy and the module inventory
  - Enumerate every indexed module and instance key
  - Report ingestion statistics and per-family availability
  - Serve the query surface over MCP for GUI shells and agents

Examples:
  cvq show cpu_core ./run1            # Module detail by exact name
  cvq show top/cpu/core0 ./run1       # Instance detail by exact path
  cvq hierarchy tb.dut_inst ./run1    # Subtree of the design hierarchy
  cvq list --instances ./run1         # All indexed instance paths
  cvq stats ./run1                    # Ingestion diagnostics

See 'cvq <command> --help' for command-specific options.`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .cvq/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "Output format (text|yaml|json)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Skip the persisted section-index cache")
}

// newLogger builds the command-scoped logger. Debug output follows --verbose.
func newLogger() hclog.Logger {
	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "cvq",
		Level:  level,
		Output: os.Stderr,
	})
}
