package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"snapvault/internal/hashing"
	"snapvault/internal/report"
	"snapvault/internal/runlog"
	"snapvault/internal/store"
	"snapvault/internal/testsupport"
)

func writeRunArtifact(t *testing.T, dir, sourceRoot, destRoot string, mode runlog.Mode, signature string) string {
	t.Helper()
	w, err := runlog.Begin(dir, sourceRoot, destRoot, mode, signature)
	if err != nil {
		t.Fatalf("runlog.Begin: %v", err)
	}
	if err := w.RecordCopy(filepath.Join(sourceRoot, "a.jpg"), filepath.Join(destRoot, "a.jpg")); err != nil {
		t.Fatalf("RecordCopy: %v", err)
	}
	if _, err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return w.Path()
}

func indexRunArtifact(t *testing.T, st *store.Store, path string) store.RunInfo {
	t.Helper()
	info, err := store.RunInfoFromArtifact(path)
	if err != nil {
		t.Fatalf("RunInfoFromArtifact: %v", err)
	}
	if err := st.IndexRun(context.Background(), info); err != nil {
		t.Fatalf("IndexRun: %v", err)
	}
	return info
}

func TestIndexAndListRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	live := writeRunArtifact(t, cfg.RunsDir(), "/src", "/dst", runlog.ModeLiveCopy, "sig-a")
	dry := writeRunArtifact(t, cfg.RunsDir(), "/src", "/dst", runlog.ModeDryRun, "sig-a")
	other := writeRunArtifact(t, cfg.RunsDir(), "/elsewhere", "/dst", runlog.ModeLiveCopy, "sig-b")

	liveInfo := indexRunArtifact(t, st, live)
	indexRunArtifact(t, st, dry)
	indexRunArtifact(t, st, other)

	runs, err := st.ListRuns(ctx, store.Filter{SourceRoot: "/src", DestinationRoot: "/dst"})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != liveInfo.RunID {
		t.Fatalf("expected the live run only, got %+v", runs)
	}
	if runs[0].Total != 1 || runs[0].Copied != 1 || !runs[0].Finalized {
		t.Fatalf("unexpected summary columns: %+v", runs[0])
	}
	if runs[0].Path != live {
		t.Fatalf("path mismatch: %s vs %s", runs[0].Path, live)
	}

	withDry, err := st.ListRuns(ctx, store.Filter{SourceRoot: "/src", DestinationRoot: "/dst", IncludeDryRuns: true})
	if err != nil {
		t.Fatalf("ListRuns with dry runs: %v", err)
	}
	if len(withDry) != 2 {
		t.Fatalf("expected 2 candidates with dry runs, got %d", len(withDry))
	}

	bySig, err := st.ListRuns(ctx, store.Filter{ConfigSignature: "sig-b", IncludeDryRuns: true})
	if err != nil {
		t.Fatalf("ListRuns by signature: %v", err)
	}
	if len(bySig) != 1 || bySig[0].SourceRoot != "/elsewhere" {
		t.Fatalf("signature filter failed: %+v", bySig)
	}

	found, err := st.FindRun(ctx, liveInfo.RunID)
	if err != nil {
		t.Fatalf("FindRun: %v", err)
	}
	if found == nil || found.ConfigSignature != "sig-a" {
		t.Fatalf("unexpected find result: %+v", found)
	}
	missing, err := st.FindRun(ctx, "nope")
	if err != nil {
		t.Fatalf("FindRun missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v", missing)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := writeRunArtifact(t, cfg.RunsDir(), "/s", "/d", runlog.ModeLiveCopy, "sig")
	second := writeRunArtifact(t, cfg.RunsDir(), "/s", "/d", runlog.ModeLiveCopy, "sig")
	indexRunArtifact(t, st, first)
	indexRunArtifact(t, st, second)

	runs, err := st.ListRuns(ctx, store.Filter{Limit: 1})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("limit ignored: %d results", len(runs))
	}
	all, err := st.ListRuns(ctx, store.Filter{})
	if err != nil {
		t.Fatalf("ListRuns all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(all))
	}
	if all[0].RunID < all[1].RunID {
		t.Fatalf("expected newest first: %s before %s", all[0].RunID, all[1].RunID)
	}
}

func TestDuplicateRunIDRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	path := writeRunArtifact(t, cfg.RunsDir(), "/s", "/d", runlog.ModeLiveCopy, "sig")
	info := indexRunArtifact(t, st, path)
	if err := st.IndexRun(context.Background(), info); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestIndexAndFindReport(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	w, err := report.Begin(cfg.ReportsDir(), "/s", "/d", report.InputRunRecord, "run-1", hashing.SHA256)
	if err != nil {
		t.Fatalf("report.Begin: %v", err)
	}
	if err := w.Record(report.Entry{SourcePath: "/s/a.jpg", Status: report.StatusOK, MatchType: report.MatchExpectedPath}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := w.Record(report.Entry{SourcePath: "/s/b.jpg", Status: report.StatusMismatch, MatchType: report.MatchExpectedPath}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	info, err := store.ReportInfoFromArtifact(w.Path())
	if err != nil {
		t.Fatalf("ReportInfoFromArtifact: %v", err)
	}
	if err := st.IndexReport(ctx, info); err != nil {
		t.Fatalf("IndexReport: %v", err)
	}

	found, err := st.FindReport(ctx, info.VerifyID)
	if err != nil {
		t.Fatalf("FindReport: %v", err)
	}
	if found == nil {
		t.Fatal("expected indexed report")
	}
	if found.Summary.OK != 1 || found.Summary.Mismatch != 1 || found.Summary.Total != 2 {
		t.Fatalf("unexpected summary: %+v", found.Summary)
	}
	if found.InputSource != report.InputRunRecord || found.RunID != "run-1" {
		t.Fatalf("unexpected provenance: %+v", found)
	}

	reports, err := st.ListReports(ctx, store.Filter{SourceRoot: "/s"})
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
}

func TestReindexSkipsCorruptArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	writeRunArtifact(t, cfg.RunsDir(), "/s", "/d", runlog.ModeLiveCopy, "sig")
	corrupt := filepath.Join(cfg.RunsDir(), "garbage_run.jsonl")
	if err := os.WriteFile(corrupt, []byte("not json at all\n"), 0o644); err != nil {
		t.Fatalf("write corrupt artifact: %v", err)
	}

	w, err := report.Begin(cfg.ReportsDir(), "/s", "/d", report.InputReconstructed, "", hashing.SHA256)
	if err != nil {
		t.Fatalf("report.Begin: %v", err)
	}
	if _, err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	result, err := st.Reindex(ctx)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if result.Runs != 1 || result.Reports != 1 || result.Skipped != 1 {
		t.Fatalf("unexpected reindex result: %+v", result)
	}

	runs, err := st.ListRuns(ctx, store.Filter{})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 indexed run after reindex, got %d", len(runs))
	}
}

func TestReindexReplacesStaleRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	path := writeRunArtifact(t, cfg.RunsDir(), "/s", "/d", runlog.ModeLiveCopy, "sig")
	indexRunArtifact(t, st, path)

	// Artifact removed from disk; the index must follow the filesystem.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove artifact: %v", err)
	}
	result, err := st.Reindex(ctx)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if result.Runs != 0 {
		t.Fatalf("expected empty index, got %+v", result)
	}
	runs, err := st.ListRuns(ctx, store.Filter{})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("stale rows survived reindex: %+v", runs)
	}
}
