package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"railgen/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:         "init [path]",
	Short:       "Write a default config file",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{noCatalog: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigPath()
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config")
	rootCmd.AddCommand(initCmd)
}
