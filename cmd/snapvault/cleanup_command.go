package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"snapvault/internal/cleanup"
	"snapvault/internal/discovery"
	"snapvault/internal/report"
	"snapvault/internal/store"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var (
		verifyID   string
		verifyFile string
		last       bool
		yes        bool
		sourceRoot string
		destRoot   string
		noDryRun   bool
		force      bool
		allowQuick bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete source files whose archived copies are verified",
		Long: `Cleanup deletes sources that a verification report has proven safe:
status ok or ok_existing_duplicate, sha256 proof, and both files still
present at deletion time. It runs as a simulation unless --no-dry-run is
given, and it never touches destination files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			reportPath := verifyFile
			if reportPath == "" {
				filter := store.Filter{SourceRoot: sourceRoot, DestinationRoot: destRoot}
				mode := defaultSelectionMode()
				if verifyID != "" {
					mode = discovery.ModeByID
				} else if last || yes {
					mode = discovery.ModeLast
				}
				chooser := &promptChooser{in: cmd.InOrStdin(), out: cmd.OutOrStdout()}
				info, err := discovery.SelectReport(cmd.Context(), st, filter, mode, verifyID, chooser)
				if err != nil {
					return err
				}
				reportPath = info.Path
			}

			cleaner := cleanup.New(cfg, ctx.ensureLogger())
			cleaner.AllowQuick = allowQuick || cfg.Cleanup.AllowQuick
			if noDryRun {
				cleaner.DryRun = false
			}

			out := cmd.OutOrStdout()
			if !cleaner.DryRun && !force {
				header, summary, _, err := report.Stream(reportPath, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Report %s: %d of %d files are deletion candidates.\n",
					header.VerifyID, summary.CleanupEligibleCount(), summary.Total)
				ok, err := confirm(cmd.InOrStdin(), out, "Delete the verified sources?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			result, err := cleaner.Run(cmd.Context(), reportPath)
			if err != nil {
				return err
			}

			printCleanupResult(out, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&verifyID, "verify-id", "", "Act on the report with this id")
	cmd.Flags().StringVar(&verifyFile, "verify-file", "", "Act on a verification report artifact directly")
	cmd.Flags().BoolVar(&last, "last", false, "Act on the most recent matching report")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Take the most recent candidate without prompting")
	cmd.Flags().StringVar(&sourceRoot, "source", "", "Source root discovery filter")
	cmd.Flags().StringVar(&destRoot, "destination", "", "Destination root discovery filter")
	cmd.Flags().BoolVar(&noDryRun, "no-dry-run", false, "Actually delete files (default is a simulation)")
	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&allowQuick, "allow-quick", false, "Permit deletion from quick-verified reports")

	return cmd
}

func printCleanupResult(out io.Writer, result *cleanup.Result) {
	verb := "Deleted"
	if result.DryRun {
		verb = "Would delete"
	}
	fmt.Fprintf(out, "%s %d files (%s); skipped %d, failed %d.\n",
		verb, result.Deleted, formatBytes(result.BytesFreed), result.Skipped, result.Failed)
	for _, d := range result.FailedPaths {
		fmt.Fprintf(out, "  failed: %s (%s)\n", d.SourcePath, d.Reason)
	}
	for _, d := range result.SkippedPaths {
		fmt.Fprintf(out, "  skipped: %s (%s)\n", d.SourcePath, d.Reason)
	}
}

func formatBytes(n int64) string {
	value := float64(n)
	for _, unit := range []string{"B", "KiB", "MiB", "GiB", "TiB"} {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f PiB", value)
}
