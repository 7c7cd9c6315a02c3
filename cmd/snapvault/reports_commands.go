package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"snapvault/internal/store"
)

func newReportsCommand(ctx *commandContext) *cobra.Command {
	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect verification reports",
	}
	reportsCmd.AddCommand(newReportsListCommand(ctx))
	reportsCmd.AddCommand(newReportsShowCommand(ctx))
	return reportsCmd
}

func newReportsListCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceRoot string
		destRoot   string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List verification reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			reports, err := st.ListReports(cmd.Context(), store.Filter{
				SourceRoot:      sourceRoot,
				DestinationRoot: destRoot,
				Limit:           limit,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(reports) == 0 {
				fmt.Fprintln(out, "No verification reports recorded.")
				return nil
			}
			rows := make([][]string, 0, len(reports))
			for _, r := range reports {
				rows = append(rows, []string{
					r.VerifyID,
					r.CreatedAt.Local().Format(time.DateTime),
					string(r.InputSource),
					string(r.HashAlgorithm),
					strconv.Itoa(r.Summary.Total),
					strconv.Itoa(r.Summary.CleanupEligibleCount()),
					strconv.Itoa(r.Summary.Mismatch + r.Summary.Errors),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{
					{title: "Report"},
					{title: "Created"},
					{title: "Input"},
					{title: "Algorithm"},
					{title: "Files", numeric: true},
					{title: "Eligible", numeric: true},
					{title: "Problems", numeric: true},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceRoot, "source", "", "Filter by source root")
	cmd.Flags().StringVar(&destRoot, "destination", "", "Filter by destination root")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows (0 = all)")
	return cmd
}

func newReportsShowCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <verify-id>",
		Short: "Show one report's metadata and summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			info, err := st.FindReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if info == nil {
				return fmt.Errorf("report %s is not indexed (try 'snapvault reindex')", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Report:      %s\n", info.VerifyID)
			fmt.Fprintf(out, "Created:     %s\n", info.CreatedAt.Local().Format(time.DateTime))
			fmt.Fprintf(out, "Input:       %s\n", info.InputSource)
			if info.RunID != "" {
				fmt.Fprintf(out, "Run:         %s\n", info.RunID)
			}
			fmt.Fprintf(out, "Algorithm:   %s\n", info.HashAlgorithm)
			fmt.Fprintf(out, "Source:      %s\n", info.SourceRoot)
			fmt.Fprintf(out, "Destination: %s\n", info.DestinationRoot)
			fmt.Fprintf(out, "Finalized:   %s\n", yesNo(info.Finalized))
			fmt.Fprintf(out, "Artifact:    %s\n", info.Path)
			fmt.Fprintln(out, renderSummaryTable(info.Summary))
			return nil
		},
	}
	return cmd
}
