package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"railgen/internal/loader"
	"railgen/internal/scenario"
	"railgen/internal/service"
	"railgen/internal/watcher"
)

var (
	generateAll    bool
	generateImport bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [script|file.yaml ...]",
	Short: "Run generation scripts and write <out>/<script>/infra.json",
	Long: `Runs built-in scenarios (see "railgen scenarios") or YAML topology scripts.
Each script writes infra.json and external_generated_inputs.json into a
directory named after it under the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scripts, err := resolveScripts(args, generateAll)
		if err != nil {
			return err
		}

		gens, genErr := current.svc.GenerateAll(cmd.Context(), scripts)
		for _, gen := range gens {
			status := ""
			if gen.Unchanged {
				status = " (unchanged)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s  %s%s\n", gen.Run.Script, gen.Run.Fingerprint[:12], gen.Run.Summary, status)
		}

		if generateImport {
			if _, err := current.requireClient(); err != nil {
				return err
			}
			for _, gen := range gens {
				run, err := current.svc.ImportRun(cmd.Context(), gen.Run.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s imported as infra %d\n", run.Script, *run.InfraID)
			}
		}
		return genErr
	},
}

func init() {
	generateCmd.Flags().BoolVarP(&generateAll, "all", "a", false, "Generate every built-in scenario")
	generateCmd.Flags().BoolVar(&generateImport, "import", false, "Import each generation into the infrastructure service")
	rootCmd.AddCommand(generateCmd)
}

// resolveScripts maps arguments to scripts: YAML files are loaded, anything
// else must name a built-in scenario.
func resolveScripts(args []string, all bool) ([]scenario.Script, error) {
	if all {
		return scenario.All(), nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: name scripts or pass --all", service.ErrNoScripts)
	}

	scripts := make([]scenario.Script, 0, len(args))
	for _, arg := range args {
		if watcher.IsScript(arg) {
			if _, err := os.Stat(arg); err != nil {
				return nil, fmt.Errorf("script isn't a file: %s", arg)
			}
			s, err := loader.LoadScript(arg)
			if err != nil {
				return nil, err
			}
			scripts = append(scripts, s)
			continue
		}
		s, err := scenario.Lookup(arg)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}
