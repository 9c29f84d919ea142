package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/covquery/cvq/internal/ingest"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [report-dir]",
	Short: "Enumerate indexed module or instance keys",
	Long: `List every key in the detail report's section index.

By default module names are listed; --instances switches to instance
paths. The listing is the exact key set 'cvq show' accepts.

Examples:
  cvq list ./run1
  cvq list --instances ./run1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

var listInstances bool

func init() {
	listCmd.Flags().BoolVar(&listInstances, "instances", false, "List instance paths instead of module names")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, cleanup, err := newEngine(runDir(args, 0), cfg, newLogger())
	if err != nil {
		return err
	}
	defer cleanup()

	seq, err := engine.AvailableModules()
	if listInstances {
		seq, err = engine.AvailableInstances()
	}
	if errors.Is(err, ingest.ErrUnavailable) {
		return errors.New("detail report unavailable: run 'cvq stats' for the cause")
	}
	if err != nil {
		return err
	}

	for key := range seq {
		fmt.Println(key)
	}
	return nil
}
