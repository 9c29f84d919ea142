package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/covquery/cvq/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long: `Create .cvq/config.yaml in the current directory with the default
report file names, cache setting, and output format.

The .cvq directory also holds the persisted section-index cache.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := config.SaveDefault(".")
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
