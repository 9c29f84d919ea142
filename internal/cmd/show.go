package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/covquery/cvq/internal/detail"
	"github.com/covquery/cvq/internal/ingest"
	"github.com/covquery/cvq/internal/output"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <name|path> [report-dir]",
	Short: "Show a module's or instance's detail section",
	Long: `Look up one section of the module/instance detail report by exact key.

A key containing '/' is treated as an instance path; anything else as a
module name. Keys are matched byte-for-byte: no wildcards, prefixes, or
case folding. Use --instance to force the instance namespace for keys
without a separator.

Examples:
  cvq show cpu_core ./run1
  cvq show top/cpu/core0 ./run1
  cvq show --instance top ./run1`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runShow,
}

var showInstance bool

func init() {
	showCmd.Flags().BoolVar(&showInstance, "instance", false, "Treat the key as an instance path")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := resolveFormat(cfg)
	if err != nil {
		return err
	}

	engine, cleanup, err := newEngine(runDir(args, 1), cfg, newLogger())
	if err != nil {
		return err
	}
	defer cleanup()

	key := args[0]
	var d *detail.Detail
	if showInstance || strings.ContainsRune(key, '/') {
		d, err = engine.InstanceDetail(key)
	} else {
		d, err = engine.ModuleDetail(key)
	}
	switch {
	case errors.Is(err, detail.ErrNotFound):
		return fmt.Errorf("%q: not found (keys are exact and case-sensitive; try 'cvq list')", key)
	case errors.Is(err, ingest.ErrUnavailable):
		return fmt.Errorf("detail report unavailable: run 'cvq stats %s' for the cause", runDir(args, 1))
	case err != nil:
		return err
	}

	if format == output.FormatText {
		output.WriteDetail(os.Stdout, d)
		return nil
	}
	return output.Marshal(os.Stdout, d, format)
}
