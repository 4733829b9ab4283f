package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"railgen/internal/scenario"
)

var scenariosCmd = &cobra.Command{
	Use:         "scenarios",
	Short:       "List the built-in generation scripts",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noCatalog: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range scenario.All() {
			desc := ""
			if d, ok := s.(scenario.Described); ok {
				desc = d.Description()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", s.Name(), desc)
		}
	},
}

func init() {
	rootCmd.AddCommand(scenariosCmd)
}
