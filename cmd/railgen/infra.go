package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"railgen/internal/codec"
	"railgen/internal/repository"
)

var importRunID string

var importCmd = &cobra.Command{
	Use:   "import [script]",
	Short: "Import the latest generation of a script into the infrastructure service",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := current.requireClient(); err != nil {
			return err
		}

		var (
			run *repository.Run
			err error
		)
		switch {
		case importRunID != "":
			id, perr := uuid.Parse(importRunID)
			if perr != nil {
				return fmt.Errorf("invalid run id %q: %w", importRunID, perr)
			}
			run, err = current.svc.ImportRun(cmd.Context(), id)
		case len(args) == 1:
			run, err = current.svc.Import(cmd.Context(), args[0])
		default:
			return fmt.Errorf("name a script or pass --run")
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s (run %s) imported as infra %d\n", run.Script, run.ID, *run.InfraID)
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <infra-id> <dir>",
	Short: "Download an imported infrastructure into a generation directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := current.requireClient()
		if err != nil {
			return err
		}
		id, err := parseInfraID(args[0])
		if err != nil {
			return err
		}

		infra, err := c.FetchInfra(cmd.Context(), id)
		if err != nil {
			return err
		}
		if err := codec.WriteGeneration(args[1], infra, nil); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "infra %d written to %s: %s\n", id, args[1], infra.Summary())
		return nil
	},
}

var dropCmd = &cobra.Command{
	Use:   "drop <infra-id>",
	Short: "Delete an imported infrastructure from the infrastructure service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := current.requireClient()
		if err != nil {
			return err
		}
		id, err := parseInfraID(args[0])
		if err != nil {
			return err
		}
		if err := c.DeleteInfra(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "infra %d deleted\n", id)
		return nil
	},
}

func parseInfraID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid infra id %q", s)
	}
	return id, nil
}

func init() {
	importCmd.Flags().StringVar(&importRunID, "run", "", "Import a specific run instead of the latest one")
	rootCmd.AddCommand(importCmd, fetchCmd, dropCmd)
}
