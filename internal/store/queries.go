package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"snapvault/internal/hashing"
	"snapvault/internal/report"
	"snapvault/internal/runlog"
)

const runColumns = "run_id, created_at, source_root, destination_root, mode, config_signature, total, copied, moved, skipped, finalized, filename"

const reportColumns = "verify_id, created_at, source_root, destination_root, input_source, run_id, hash_algorithm, total, ok, ok_existing_duplicate, mismatch, missing_destination, missing_source, errors, skipped, finalized, filename"

// ListRuns returns indexed runs matching the filter, newest first.
func (s *Store) ListRuns(ctx context.Context, filter Filter) ([]RunInfo, error) {
	ctx = ensureContext(ctx)

	query := "SELECT " + runColumns + " FROM runs WHERE 1=1"
	var args []any
	if filter.SourceRoot != "" {
		query += " AND source_root = ?"
		args = append(args, filter.SourceRoot)
	}
	if filter.DestinationRoot != "" {
		query += " AND destination_root = ?"
		args = append(args, filter.DestinationRoot)
	}
	if filter.ConfigSignature != "" {
		query += " AND config_signature = ?"
		args = append(args, filter.ConfigSignature)
	}
	if !filter.IncludeDryRuns {
		query += " AND mode != ?"
		args = append(args, string(runlog.ModeDryRun))
	}
	query += " ORDER BY created_at DESC, run_id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		info, err := s.scanRun(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return infos, nil
}

// ListReports returns indexed verification reports matching the filter,
// newest first.
func (s *Store) ListReports(ctx context.Context, filter Filter) ([]ReportInfo, error) {
	ctx = ensureContext(ctx)

	query := "SELECT " + reportColumns + " FROM reports WHERE 1=1"
	var args []any
	if filter.SourceRoot != "" {
		query += " AND source_root = ?"
		args = append(args, filter.SourceRoot)
	}
	if filter.DestinationRoot != "" {
		query += " AND destination_root = ?"
		args = append(args, filter.DestinationRoot)
	}
	query += " ORDER BY created_at DESC, verify_id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var infos []ReportInfo
	for rows.Next() {
		info, err := s.scanReport(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return infos, nil
}

// FindRun looks up a run by id. Returns nil when the id is not indexed.
func (s *Store) FindRun(ctx context.Context, runID string) (*RunInfo, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID)
	info, err := s.scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// FindReport looks up a verification report by id. Returns nil when the id
// is not indexed.
func (s *Store) FindReport(ctx context.Context, verifyID string) (*ReportInfo, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE verify_id = ?", verifyID)
	info, err := s.scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *Store) scanRun(scanner interface{ Scan(dest ...any) error }) (RunInfo, error) {
	var (
		info       RunInfo
		createdRaw string
		mode       string
		finalized  int
		filename   string
	)
	if err := scanner.Scan(
		&info.RunID,
		&createdRaw,
		&info.SourceRoot,
		&info.DestinationRoot,
		&mode,
		&info.ConfigSignature,
		&info.Total,
		&info.Copied,
		&info.Moved,
		&info.Skipped,
		&finalized,
		&filename,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunInfo{}, err
		}
		return RunInfo{}, fmt.Errorf("scan run row: %w", err)
	}
	info.CreatedAt = parseTimestamp(createdRaw)
	info.Mode = runlog.Mode(mode)
	info.Finalized = finalized != 0
	info.Path = filepath.Join(s.cfg.RunsDir(), filename)
	return info, nil
}

func (s *Store) scanReport(scanner interface{ Scan(dest ...any) error }) (ReportInfo, error) {
	var (
		info       ReportInfo
		createdRaw string
		input      string
		algorithm  string
		finalized  int
		filename   string
	)
	if err := scanner.Scan(
		&info.VerifyID,
		&createdRaw,
		&info.SourceRoot,
		&info.DestinationRoot,
		&input,
		&info.RunID,
		&algorithm,
		&info.Summary.Total,
		&info.Summary.OK,
		&info.Summary.OKExistingDup,
		&info.Summary.Mismatch,
		&info.Summary.MissingDestination,
		&info.Summary.MissingSource,
		&info.Summary.Errors,
		&info.Summary.Skipped,
		&finalized,
		&filename,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ReportInfo{}, err
		}
		return ReportInfo{}, fmt.Errorf("scan report row: %w", err)
	}
	info.CreatedAt = parseTimestamp(createdRaw)
	info.InputSource = report.InputSource(input)
	info.HashAlgorithm = hashing.Algorithm(algorithm)
	info.Finalized = finalized != 0
	info.Path = filepath.Join(s.cfg.ReportsDir(), filename)
	return info, nil
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}
