package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"snapvault/internal/logging"
	"snapvault/internal/report"
	"snapvault/internal/runlog"
)

// RunInfoFromArtifact summarizes a run record document for indexing. The
// entry stream is consumed to tally an unfinalized record's counts.
func RunInfoFromArtifact(path string) (RunInfo, error) {
	header, summary, finalized, err := runlog.Stream(path, nil)
	if err != nil {
		return RunInfo{}, err
	}
	return RunInfo{
		RunID:           header.RunID,
		CreatedAt:       header.CreatedAt,
		SourceRoot:      header.SourceRoot,
		DestinationRoot: header.DestinationRoot,
		Mode:            header.Mode,
		ConfigSignature: header.ConfigSignature,
		Total:           summary.Total,
		Copied:          summary.Copied,
		Moved:           summary.Moved,
		Skipped:         summary.Skipped,
		Finalized:       finalized,
		Path:            path,
	}, nil
}

// ReportInfoFromArtifact summarizes a verification report document for
// indexing.
func ReportInfoFromArtifact(path string) (ReportInfo, error) {
	header, summary, finalized, err := report.Stream(path, nil)
	if err != nil {
		return ReportInfo{}, err
	}
	return ReportInfo{
		VerifyID:        header.VerifyID,
		CreatedAt:       header.CreatedAt,
		SourceRoot:      header.SourceRoot,
		DestinationRoot: header.DestinationRoot,
		InputSource:     header.InputSource,
		RunID:           header.RunID,
		HashAlgorithm:   header.HashAlgorithm,
		Summary:         summary,
		Finalized:       finalized,
		Path:            path,
	}, nil
}

// IndexRun records a run artifact in the index. Run ids are append-once: a
// duplicate id is an error, never an overwrite.
func (s *Store) IndexRun(ctx context.Context, info RunInfo) error {
	ctx = ensureContext(ctx)
	return s.withWriteLock(ctx, func() error {
		return s.insertRun(ctx, info)
	})
}

// IndexReport records a verification report artifact in the index.
func (s *Store) IndexReport(ctx context.Context, info ReportInfo) error {
	ctx = ensureContext(ctx)
	return s.withWriteLock(ctx, func() error {
		return s.insertReport(ctx, info)
	})
}

func (s *Store) insertRun(ctx context.Context, info RunInfo) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            run_id, created_at, source_root, destination_root, mode,
            config_signature, total, copied, moved, skipped, finalized, filename
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.RunID,
		info.CreatedAt.UTC().Format(time.RFC3339Nano),
		info.SourceRoot,
		info.DestinationRoot,
		string(info.Mode),
		info.ConfigSignature,
		info.Total,
		info.Copied,
		info.Moved,
		info.Skipped,
		boolInt(info.Finalized),
		filepath.Base(info.Path),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("run %s is already indexed", info.RunID)
		}
		return fmt.Errorf("index run %s: %w", info.RunID, err)
	}
	return nil
}

func (s *Store) insertReport(ctx context.Context, info ReportInfo) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO reports (
            verify_id, created_at, source_root, destination_root, input_source,
            run_id, hash_algorithm, total, ok, ok_existing_duplicate, mismatch,
            missing_destination, missing_source, errors, skipped, finalized, filename
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.VerifyID,
		info.CreatedAt.UTC().Format(time.RFC3339Nano),
		info.SourceRoot,
		info.DestinationRoot,
		string(info.InputSource),
		info.RunID,
		string(info.HashAlgorithm),
		info.Summary.Total,
		info.Summary.OK,
		info.Summary.OKExistingDup,
		info.Summary.Mismatch,
		info.Summary.MissingDestination,
		info.Summary.MissingSource,
		info.Summary.Errors,
		info.Summary.Skipped,
		boolInt(info.Finalized),
		filepath.Base(info.Path),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("report %s is already indexed", info.VerifyID)
		}
		return fmt.Errorf("index report %s: %w", info.VerifyID, err)
	}
	return nil
}

// ReindexResult reports what a rebuild found.
type ReindexResult struct {
	Runs    int
	Reports int
	Skipped int
}

// Reindex rebuilds the entire index from the artifact directories. A corrupt
// or unreadable artifact is logged and skipped; the scan never aborts on one
// bad file.
func (s *Store) Reindex(ctx context.Context) (ReindexResult, error) {
	ctx = ensureContext(ctx)
	var result ReindexResult
	err := s.withWriteLock(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin reindex tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM runs"); err != nil {
			return fmt.Errorf("clear runs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM reports"); err != nil {
			return fmt.Errorf("clear reports: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit reindex clear: %w", err)
		}

		for _, path := range artifactPaths(s.cfg.RunsDir(), "_run.jsonl", "_run_dryrun.jsonl") {
			info, err := RunInfoFromArtifact(path)
			if err != nil {
				s.logger.Warn("skipping unreadable run record",
					logging.String("path", path), logging.Error(err))
				result.Skipped++
				continue
			}
			if err := s.insertRun(ctx, info); err != nil {
				s.logger.Warn("skipping run record",
					logging.String("path", path), logging.Error(err))
				result.Skipped++
				continue
			}
			result.Runs++
		}

		for _, path := range artifactPaths(s.cfg.ReportsDir(), "_verify.jsonl") {
			info, err := ReportInfoFromArtifact(path)
			if err != nil {
				s.logger.Warn("skipping unreadable verification report",
					logging.String("path", path), logging.Error(err))
				result.Skipped++
				continue
			}
			if err := s.insertReport(ctx, info); err != nil {
				s.logger.Warn("skipping verification report",
					logging.String("path", path), logging.Error(err))
				result.Skipped++
				continue
			}
			result.Reports++
		}
		return nil
	})
	if err == nil {
		s.logger.Info("reindex complete", logging.Any("result", result))
	}
	return result, err
}

func artifactPaths(dir string, suffixes ...string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, suffix := range suffixes {
			if strings.HasSuffix(entry.Name(), suffix) {
				paths = append(paths, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	sort.Strings(paths)
	return paths
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
