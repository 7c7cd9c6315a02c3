package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"snapvault/internal/discovery"
	"snapvault/internal/report"
	"snapvault/internal/sortrules"
	"snapvault/internal/store"
	"snapvault/internal/verify"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var (
		runID          string
		runFile        string
		last           bool
		yes            bool
		reconstruct    bool
		sourceRoot     string
		destRoot       string
		includeDryRuns bool
		algorithm      string
		matchConfig    bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify archived copies against their sources",
		Long: `Verify proves that archived copies match their sources by comparing
content digests. By default it replays a recorded run; with --reconstruct it
predicts destinations from the current sorting rules, for archives whose run
record is lost.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if algorithm != "" {
				cfg.Verify.Algorithm = algorithm
			}
			verifier, err := verify.New(cfg, ctx.ensureLogger())
			if err != nil {
				return err
			}

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			var outcome *verify.Outcome
			switch {
			case reconstruct:
				if sourceRoot == "" || destRoot == "" {
					return fmt.Errorf("--reconstruct requires --source and --destination")
				}
				rules := sortrules.RulesFromConfig(cfg)
				outcome, err = verifier.VerifyReconstructed(cmd.Context(), sourceRoot, destRoot, rules)
			case runFile != "":
				outcome, err = verifier.VerifyRecord(cmd.Context(), runFile)
			default:
				filter := store.Filter{
					SourceRoot:      sourceRoot,
					DestinationRoot: destRoot,
					IncludeDryRuns:  includeDryRuns || cfg.Verify.IncludeDryRuns,
				}
				if matchConfig {
					filter.ConfigSignature = sortrules.RulesFromConfig(cfg).Signature()
				}
				mode := defaultSelectionMode()
				if runID != "" {
					mode = discovery.ModeByID
				} else if last || yes {
					mode = discovery.ModeLast
				}
				chooser := &promptChooser{in: cmd.InOrStdin(), out: cmd.OutOrStdout()}
				info, selErr := discovery.SelectRun(cmd.Context(), st, filter, mode, runID, chooser)
				if selErr != nil {
					return selErr
				}
				outcome, err = verifier.VerifyRecord(cmd.Context(), info.Path)
			}
			if err != nil {
				return err
			}

			info, err := store.ReportInfoFromArtifact(outcome.Path)
			if err != nil {
				return err
			}
			if err := st.IndexReport(cmd.Context(), info); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Verification %s\n", outcome.VerifyID)
			fmt.Fprintln(out, renderSummaryTable(outcome.Summary))
			fmt.Fprintf(out, "Report written to %s\n", outcome.Path)
			// A failed comparison is a finding, not a command failure: the
			// report is the deliverable and it was produced.
			if outcome.Summary.Mismatch > 0 || outcome.Summary.Errors > 0 {
				fmt.Fprintf(out, "%d mismatched and %d errored files need attention.\n",
					outcome.Summary.Mismatch, outcome.Summary.Errors)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run-id", "", "Verify the run with this id")
	cmd.Flags().StringVar(&runFile, "run-file", "", "Verify a run record artifact directly")
	cmd.Flags().BoolVar(&last, "last", false, "Verify the most recent matching run")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Take the most recent candidate without prompting")
	cmd.Flags().BoolVar(&reconstruct, "reconstruct", false, "Reconstruct the mapping from sorting rules instead of a run record")
	cmd.Flags().StringVar(&sourceRoot, "source", "", "Source root (discovery filter, or reconstruction input)")
	cmd.Flags().StringVar(&destRoot, "destination", "", "Destination root (discovery filter, or reconstruction input)")
	cmd.Flags().BoolVar(&includeDryRuns, "include-dry-runs", false, "Consider dry-run records during discovery")
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "Hash algorithm: sha256 or quick")
	cmd.Flags().BoolVar(&matchConfig, "match-config", false, "Only consider runs recorded under the current sorting rules")

	return cmd
}

func renderSummaryTable(s report.Summary) string {
	rows := make([][]string, 0, len(report.AllStatuses))
	for _, status := range report.AllStatuses {
		count := s.Count(status)
		if count == 0 {
			continue
		}
		rows = append(rows, []string{string(status), strconv.Itoa(count)})
	}
	rows = append(rows, []string{"total", strconv.Itoa(s.Total)})
	return renderTable(
		[]column{{title: "Status"}, {title: "Files", numeric: true}},
		rows,
	)
}
