package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [script]",
	Short: "List recorded generations, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script := ""
		if len(args) == 1 {
			script = args[0]
		}
		runs, err := current.svc.History(cmd.Context(), script, historyLimit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tSCRIPT\tCREATED\tFINGERPRINT\tINFRA\tSUMMARY")
		for _, run := range runs {
			infra := "-"
			if run.Imported() {
				infra = fmt.Sprint(*run.InfraID)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				run.ID, run.Script, run.CreatedAt.Local().Format(time.DateTime),
				run.Fingerprint[:12], infra, run.Summary)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
