package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReindexCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the discovery index from the artifacts on disk",
		Long: `Reindex rescans the run and report directories and rebuilds the index
from what it finds. The artifacts are the source of truth; run this after
restoring state from a backup or whenever the index looks stale.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			result, err := st.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Indexed %d runs and %d reports.\n", result.Runs, result.Reports)
			if result.Skipped > 0 {
				fmt.Fprintf(out, "Skipped %d unreadable artifacts (see log for details).\n", result.Skipped)
			}
			return nil
		},
	}
}
