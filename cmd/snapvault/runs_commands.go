package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"snapvault/internal/runlog"
	"snapvault/internal/store"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded organizing runs",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceRoot     string
		destRoot       string
		includeDryRuns bool
		limit          int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.ListRuns(cmd.Context(), store.Filter{
				SourceRoot:      sourceRoot,
				DestinationRoot: destRoot,
				IncludeDryRuns:  includeDryRuns,
				Limit:           limit,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.RunID,
					r.CreatedAt.Local().Format(time.DateTime),
					string(r.Mode),
					r.SourceRoot,
					r.DestinationRoot,
					strconv.Itoa(r.Total),
					yesNo(r.Finalized),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{
					{title: "Run"},
					{title: "Created"},
					{title: "Mode"},
					{title: "Source"},
					{title: "Destination"},
					{title: "Files", numeric: true},
					{title: "Finalized"},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceRoot, "source", "", "Filter by source root")
	cmd.Flags().StringVar(&destRoot, "destination", "", "Filter by destination root")
	cmd.Flags().BoolVar(&includeDryRuns, "include-dry-runs", false, "Include dry-run records")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows (0 = all)")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var entries bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run's metadata and summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			info, err := st.FindRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if info == nil {
				return fmt.Errorf("run %s is not indexed (try 'snapvault reindex')", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:         %s\n", info.RunID)
			fmt.Fprintf(out, "Created:     %s\n", info.CreatedAt.Local().Format(time.DateTime))
			fmt.Fprintf(out, "Mode:        %s\n", info.Mode)
			fmt.Fprintf(out, "Source:      %s\n", info.SourceRoot)
			fmt.Fprintf(out, "Destination: %s\n", info.DestinationRoot)
			fmt.Fprintf(out, "Signature:   %s\n", info.ConfigSignature)
			fmt.Fprintf(out, "Finalized:   %s\n", yesNo(info.Finalized))
			fmt.Fprintf(out, "Files:       %d (%d copied, %d moved, %d skipped)\n",
				info.Total, info.Copied, info.Moved, info.Skipped)
			fmt.Fprintf(out, "Artifact:    %s\n", info.Path)

			if !entries {
				return nil
			}
			_, _, _, err = runlog.Stream(info.Path, func(e runlog.Entry) error {
				switch e.Operation {
				case runlog.OpSkip:
					fmt.Fprintf(out, "  skip %s (%s)\n", e.SourcePath, e.Reason)
				default:
					fmt.Fprintf(out, "  %s %s -> %s\n", e.Operation, e.SourcePath, e.DestinationPath)
				}
				return nil
			})
			return err
		},
	}

	cmd.Flags().BoolVar(&entries, "entries", false, "Also print every recorded entry")
	return cmd
}
