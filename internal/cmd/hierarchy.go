package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/covquery/cvq/internal/hierarchy"
	"github.com/covquery/cvq/internal/ingest"
	"github.com/covquery/cvq/internal/output"
)

// hierarchyCmd represents the hierarchy command
var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy [path] [report-dir]",
	Short: "Show the design hierarchy tree",
	Long: `Render the design hierarchy listing as an indented tree with scores.

With no path, the whole forest is printed. With a dot-separated path, only
that node's subtree is printed.

Examples:
  cvq hierarchy ./run1
  cvq hierarchy tb.dut_inst ./run1`,
	Args: cobra.MaximumNArgs(2),
	RunE: runHierarchy,
}

func init() {
	rootCmd.AddCommand(hierarchyCmd)
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	// Disambiguate "cvq hierarchy ./run1" from "cvq hierarchy tb.x ./run1":
	// a lone argument naming an existing directory is the report dir.
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

	var roots []*hierarchy.Node
	if path == "" {
		roots, err = engine.HierarchyRoots()
	} else {
		var n *hierarchy.Node
		n, err = engine.FindHierarchyNode(path)
		if n != nil {
			roots = []*hierarchy.Node{n}
		}
	}
	switch {
	case errors.Is(err, ingest.ErrNotFound):
		return fmt.Errorf("hierarchy path %q not found", path)
	case errors.Is(err, ingest.ErrUnavailable):
		return errors.New("hierarchy report unavailable: run 'cvq stats' for the cause")
	case err != nil:
		return err
	}

	output.WriteTree(os.Stdout, roots)
	return nil
}

// isDir reports whether arg names an existing directory. Bare words that
// happen to match a directory are taken as the report dir; pass the path
// and the dir explicitly to disambiguate.
func isDir(arg string) bool {
	info, err := os.Stat(arg)
	return err == nil && info.IsDir()
}
