package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/covquery/cvq/internal/ingest"
)

// modulesCmd represents the modules command
var modulesCmd = &cobra.Command{
	Use:   "modules [path] [report-dir]",
	Short: "Browse the module inventory",
	Long: `Query the module-inventory listing.

With no path, the top-level modules are listed. With a dot-separated path,
that module's record is printed with its parent and children.

Examples:
  cvq modules ./run1
  cvq modules tb.cpu_core ./run1`,
	Args: cobra.MaximumNArgs(2),
	RunE: runModules,
}

func init() {
	rootCmd.AddCommand(modulesCmd)
}

func runModules(cmd *cobra.Command, args []string) error {
	path := ""
	dirArgs := args
	if len(args) == 2 {
		path = args[0]
		dirArgs = args[1:]
	} else if len(args) == 1 && !isDir(args[0]) {
		path = args[0]
		dirArgs = nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, cleanup, err := newEngine(runDir(dirArgs, 0), cfg, newLogger())
	if err != nil {
		return err
	}
	defer cleanup()

	if path == "" {
		top, err := engine.TopLevelModules()
		if errors.Is(err, ingest.ErrUnavailable) {
			return errors.New("inventory report unavailable: run 'cvq stats' for the cause")
		}
		if err != nil {
			return err
		}
		for _, p := range top {
			fmt.Println(p)
		}
		return nil
	}

	rec, err := engine.FindModuleRecord(path)
	switch {
	case errors.Is(err, ingest.ErrNotFound):
		return fmt.Errorf("module path %q not found", path)
	case errors.Is(err, ingest.ErrUnavailable):
		return errors.New("inventory report unavailable: run 'cvq stats' for the cause")
	case err != nil:
		return err
	}

	fmt.Fprintf(os.Stdout, "%s\n", rec.Path)
	fmt.Fprintf(os.Stdout, "  %s\n", rec.Metrics)
	if rec.ParentPath != "" {
		fmt.Fprintf(os.Stdout, "  parent:   %s\n", rec.ParentPath)
	}
	fmt.Fprintf(os.Stdout, "  leaf:     %v\n", rec.IsLeaf)
	for _, child := range rec.ChildPaths {
		fmt.Fprintf(os.Stdout, "  child:    %s\n", child)
	}
	return nil
}
