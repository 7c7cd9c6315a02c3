package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"snapvault/internal/discovery"
	"snapvault/internal/runlog"
)

func TestExitCodeMapping(t *testing.T) {
	if got := exitCode(discovery.ErrNoCandidates); got != 2 {
		t.Fatalf("no candidates exit code = %d, want 2", got)
	}
	wrapped := fmt.Errorf("select run: %w", discovery.ErrAmbiguous)
	if got := exitCode(wrapped); got != 3 {
		t.Fatalf("ambiguous exit code = %d, want 3", got)
	}
	if got := exitCode(errors.New("boom")); got != 1 {
		t.Fatalf("generic exit code = %d, want 1", got)
	}
}

func TestCLIVerifyAndCleanupFlow(t *testing.T) {
	env := setupCLITestEnv(t)

	source := filepath.Join(env.sourceDir, "photo.jpg")
	dest := filepath.Join(env.destDir, "2024", "photo.jpg")
	writeTestFile(t, source, "holiday snapshot bytes")
	writeTestFile(t, dest, "holiday snapshot bytes")

	w, err := runlog.Begin(env.cfg.RunsDir(), env.sourceDir, env.destDir, runlog.ModeLiveCopy, "sig-test")
	if err != nil {
		t.Fatalf("runlog.Begin: %v", err)
	}
	runID := w.RunID()
	if err := w.RecordCopy(source, dest); err != nil {
		t.Fatalf("RecordCopy: %v", err)
	}
	if _, err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	out, _, err := runCLI(t, []string{"reindex"}, env.configPath)
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	requireContains(t, out, "Indexed 1 runs and 0 reports.")

	out, _, err = runCLI(t, []string{"runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, runID)

	out, _, err = runCLI(t, []string{"verify", "--last"}, env.configPath)
	if err != nil {
		t.Fatalf("verify --last: %v", err)
	}
	requireContains(t, out, "ok")
	requireContains(t, out, "Report written to")

	reportPath := globOne(t, filepath.Join(env.cfg.ReportsDir(), "*_verify.jsonl"))

	out, _, err = runCLI(t, []string{"reports", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("reports list: %v", err)
	}
	requireContains(t, out, "run_record")

	out, _, err = runCLI(t, []string{"cleanup", "--verify-file", reportPath}, env.configPath)
	if err != nil {
		t.Fatalf("cleanup dry run: %v", err)
	}
	requireContains(t, out, "Would delete 1 files")
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("dry run must not delete the source: %v", err)
	}

	out, _, err = runCLI(t, []string{"cleanup", "--verify-file", reportPath, "--no-dry-run", "--force"}, env.configPath)
	if err != nil {
		t.Fatalf("cleanup live: %v", err)
	}
	requireContains(t, out, "Deleted 1 files")
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatalf("expected source deleted, stat err = %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("cleanup must never touch the destination: %v", err)
	}
	if _, err := os.Stat(env.cfg.DeletionLogPath()); err != nil {
		t.Fatalf("expected deletion log: %v", err)
	}
}

func TestCLIVerifyReportsMismatch(t *testing.T) {
	env := setupCLITestEnv(t)

	source := filepath.Join(env.sourceDir, "clip.mov")
	dest := filepath.Join(env.destDir, "2024", "clip.mov")
	writeTestFile(t, source, "original footage")
	writeTestFile(t, dest, "corrupted footage!")

	w, err := runlog.Begin(env.cfg.RunsDir(), env.sourceDir, env.destDir, runlog.ModeLiveCopy, "sig-test")
	if err != nil {
		t.Fatalf("runlog.Begin: %v", err)
	}
	if err := w.RecordCopy(source, dest); err != nil {
		t.Fatalf("RecordCopy: %v", err)
	}
	if _, err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	// A mismatch is reported, not fatal: the report artifact is the
	// deliverable and the command succeeds once it is written.
	out, _, err := runCLI(t, []string{"verify", "--run-file", w.Path()}, env.configPath)
	if err != nil {
		t.Fatalf("verify must succeed once the report is written: %v", err)
	}
	requireContains(t, out, "mismatch")
	requireContains(t, out, "1 mismatched and 0 errored files")

	reportPath := globOne(t, filepath.Join(env.cfg.ReportsDir(), "*_verify.jsonl"))
	if _, err := os.Stat(reportPath); err != nil {
		t.Fatalf("expected report artifact: %v", err)
	}
}

func TestCLIVerifyNoCandidates(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"verify", "--last"}, env.configPath)
	if !errors.Is(err, discovery.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
	if got := exitCode(err); got != 2 {
		t.Fatalf("exit code = %d, want 2", got)
	}
}

func TestCLIVerifyReconstructRequiresRoots(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"verify", "--reconstruct"}, env.configPath)
	if err == nil {
		t.Fatal("expected an error without --source and --destination")
	}
	requireContains(t, err.Error(), "--source")
}
