package report_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"snapvault/internal/hashing"
	"snapvault/internal/report"
)

func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := report.Begin(dir, "/photos/inbox", "/photos/sorted", report.InputRunRecord, "run-1", hashing.SHA256)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if w.Header().VerifyID == "" {
		t.Fatal("expected verify id")
	}
	entries := []report.Entry{
		{
			SourcePath:      "/photos/inbox/a.jpg",
			DestinationPath: "/photos/sorted/2024/01/a.jpg",
			Status:          report.StatusOK,
			MatchType:       report.MatchExpectedPath,
			SourceHash:      "abc",
			DestinationHash: "abc",
		},
		{
			SourcePath:      "/photos/inbox/b.jpg",
			DestinationPath: "/photos/sorted/2024/02/b.jpg",
			Status:          report.StatusOKExistingDuplicate,
			MatchType:       report.MatchContentSearch,
		},
		{
			SourcePath: "/photos/inbox/c.jpg",
			Status:     report.StatusMissingDestination,
			MatchType:  report.MatchUnknown,
		},
	}
	for _, e := range entries {
		if err := w.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	summary, err := w.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if summary.Total != 3 || summary.OK != 1 || summary.OKExistingDup != 1 || summary.MissingDestination != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.CleanupEligibleCount() != 2 {
		t.Fatalf("expected 2 eligible, got %d", summary.CleanupEligibleCount())
	}

	rep, err := report.Load(w.Path())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !rep.Finalized {
		t.Fatal("expected finalized report")
	}
	if rep.VerifyID != w.Header().VerifyID {
		t.Fatalf("verify id mismatch: %s vs %s", rep.VerifyID, w.Header().VerifyID)
	}
	if rep.InputSource != report.InputRunRecord || rep.RunID != "run-1" {
		t.Fatalf("unexpected provenance: %+v", rep.Header)
	}
	if len(rep.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(rep.Entries))
	}
	if rep.Entries[1].MatchType != report.MatchContentSearch {
		t.Fatalf("unexpected match type: %s", rep.Entries[1].MatchType)
	}
}

func TestUnfinalizedReportTalliesSummary(t *testing.T) {
	dir := t.TempDir()

	w, err := report.Begin(dir, "/s", "/d", report.InputReconstructed, "", hashing.SHA256)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := w.Record(report.Entry{SourcePath: "/s/a.jpg", Status: report.StatusMismatch, MatchType: report.MatchExpectedPath}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	// Simulates a crash: no footer is ever written.
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rep, err := report.Load(w.Path())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rep.Finalized {
		t.Fatal("expected unfinalized report")
	}
	if rep.Summary.Total != 1 || rep.Summary.Mismatch != 1 {
		t.Fatalf("expected tallied summary, got %+v", rep.Summary)
	}
}

func TestStreamToleratesTornTail(t *testing.T) {
	dir := t.TempDir()

	w, err := report.Begin(dir, "/s", "/d", report.InputRunRecord, "run", hashing.SHA256)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := w.Record(report.Entry{SourcePath: "/s/a.jpg", Status: report.StatusOK, MatchType: report.MatchExpectedPath}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.OpenFile(w.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open for append: %v", err)
	}
	if _, err := f.WriteString(`{"kind":"entry","entry":{"source_pa`); err != nil {
		t.Fatalf("append torn line: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var count int
	_, summary, finalized, err := report.Stream(w.Path(), func(report.Entry) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if finalized {
		t.Fatal("expected unfinalized report")
	}
	if count != 1 || summary.OK != 1 {
		t.Fatalf("expected the intact entry only, got count=%d summary=%+v", count, summary)
	}
}

func TestCleanupEligibilityByStatus(t *testing.T) {
	eligible := map[report.Status]bool{
		report.StatusOK:                  true,
		report.StatusOKExistingDuplicate: true,
		report.StatusMismatch:            false,
		report.StatusMissingDestination:  false,
		report.StatusMissingSource:       false,
		report.StatusError:               false,
		report.StatusSkipped:             false,
	}
	if len(eligible) != len(report.AllStatuses) {
		t.Fatalf("status set changed, update this test")
	}
	for status, want := range eligible {
		if got := status.CleanupEligible(); got != want {
			t.Fatalf("CleanupEligible(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	if _, err := report.ParseStatus("ok"); err != nil {
		t.Fatalf("ParseStatus(ok): %v", err)
	}
	if _, err := report.ParseStatus("verified"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestVerifyIDAndFilename(t *testing.T) {
	early := report.NewVerifyID(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	late := report.NewVerifyID(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if !(early < late) {
		t.Fatalf("expected lexical ordering: %s vs %s", early, late)
	}
	if !strings.HasSuffix(report.Filename("abc"), "_verify.jsonl") {
		t.Fatalf("unexpected filename: %s", report.Filename("abc"))
	}
}
