package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"snapvault/internal/config"
	"snapvault/internal/hashing"
	"snapvault/internal/logging"
	"snapvault/internal/report"
)

// Cleaner deletes source files whose archived copies a verification report
// has proven. It only ever unlinks paths named as sources in the report, and
// every deletion is re-gated at the moment it happens.
type Cleaner struct {
	// DryRun simulates deletions. It is the default; live deletion is the
	// explicit choice.
	DryRun bool
	// AllowQuick permits deleting entries proven only by the quick size
	// check. Off unless the operator opts in.
	AllowQuick bool

	deletionLog string
	logger      *slog.Logger
}

// New builds a Cleaner from config. DryRun follows the configured default
// and callers override it per invocation.
func New(cfg *config.Config, logger *slog.Logger) *Cleaner {
	deletionLog := ""
	if cfg.Cleanup.DeletionLog {
		deletionLog = cfg.DeletionLogPath()
	}
	return &Cleaner{
		DryRun:      cfg.Cleanup.DryRunDefault,
		AllowQuick:  cfg.Cleanup.AllowQuick,
		deletionLog: deletionLog,
		logger:      logging.NewComponentLogger(logger, "cleanup"),
	}
}

// Detail records the outcome for one source path.
type Detail struct {
	SourcePath string
	Reason     string
}

// Result summarizes a cleanup pass.
type Result struct {
	Eligible   int
	Deleted    int
	Skipped    int
	Failed     int
	BytesFreed int64
	DryRun     bool

	DeletedPaths []string
	SkippedPaths []Detail
	FailedPaths  []Detail
}

// Run streams a verification report and deletes (or, in dry-run, counts)
// each source whose entry passes the eligibility gate. Ineligible entries
// are skipped with a reason; per-file failures are recorded and the pass
// continues.
func (c *Cleaner) Run(ctx context.Context, reportPath string) (*Result, error) {
	started := time.Now()
	header, err := report.ReadHeader(reportPath)
	if err != nil {
		return nil, err
	}
	if !header.HashAlgorithm.CleanupEligible() && !c.AllowQuick {
		return nil, fmt.Errorf("report %s was verified with the %s algorithm; deletion requires sha256 (or --allow-quick)",
			header.VerifyID, header.HashAlgorithm)
	}

	ctx = logging.WithVerifyID(ctx, header.VerifyID)
	log := logging.WithContext(ctx, c.logger)
	log.Info("cleanup started",
		logging.Bool("dry_run", c.DryRun),
		logging.String("report", reportPath))

	var deletions *deletionLogger
	if c.deletionLog != "" && !c.DryRun {
		deletions, err = openDeletionLogger(c.deletionLog)
		if err != nil {
			return nil, err
		}
		defer deletions.Close()
	}

	result := &Result{DryRun: c.DryRun}
	_, _, _, err = report.Stream(reportPath, func(entry report.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.processEntry(entry, header.HashAlgorithm, result, deletions, log)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("cleanup finished",
		logging.Int("eligible", result.Eligible),
		logging.Int("deleted", result.Deleted),
		logging.Int("skipped", result.Skipped),
		logging.Int("failed", result.Failed),
		logging.Int64("bytes_freed", result.BytesFreed),
		logging.Duration("elapsed", time.Since(started)))
	return result, nil
}

// processEntry applies the full deletion gate to one entry. The checks run
// in order and every refusal names its reason; there is no deletion path
// that bypasses this function.
func (c *Cleaner) processEntry(entry report.Entry, algorithm hashing.Algorithm, result *Result, deletions *deletionLogger, log *slog.Logger) {
	if !entry.Status.CleanupEligible() {
		result.Skipped++
		result.SkippedPaths = append(result.SkippedPaths, Detail{
			SourcePath: entry.SourcePath,
			Reason:     fmt.Sprintf("status %s is not deletable", entry.Status),
		})
		return
	}
	if !algorithm.CleanupEligible() && !c.AllowQuick {
		result.Skipped++
		result.SkippedPaths = append(result.SkippedPaths, Detail{
			SourcePath: entry.SourcePath,
			Reason:     fmt.Sprintf("%s verification is not proof of identity", algorithm),
		})
		return
	}

	info, err := os.Stat(entry.SourcePath)
	if err != nil {
		result.Skipped++
		result.SkippedPaths = append(result.SkippedPaths, Detail{
			SourcePath: entry.SourcePath,
			Reason:     "source no longer exists",
		})
		return
	}

	// The verified copy must still be present at the instant of deletion.
	destination := entry.DestinationPath
	if destination == "" {
		result.Skipped++
		result.SkippedPaths = append(result.SkippedPaths, Detail{
			SourcePath: entry.SourcePath,
			Reason:     "no verified destination recorded",
		})
		return
	}
	if _, err := os.Stat(destination); err != nil {
		result.Skipped++
		result.SkippedPaths = append(result.SkippedPaths, Detail{
			SourcePath: entry.SourcePath,
			Reason:     "verified destination no longer exists",
		})
		return
	}

	result.Eligible++
	if c.DryRun {
		result.Deleted++
		result.BytesFreed += info.Size()
		result.DeletedPaths = append(result.DeletedPaths, entry.SourcePath)
		log.Debug("would delete", logging.String("source", entry.SourcePath))
		return
	}

	if err := os.Remove(entry.SourcePath); err != nil {
		result.Failed++
		result.FailedPaths = append(result.FailedPaths, Detail{
			SourcePath: entry.SourcePath,
			Reason:     err.Error(),
		})
		log.Warn("delete failed", logging.String("source", entry.SourcePath), logging.Error(err))
		return
	}
	result.Deleted++
	result.BytesFreed += info.Size()
	result.DeletedPaths = append(result.DeletedPaths, entry.SourcePath)
	log.Info("deleted source", logging.String("source", entry.SourcePath))
	if deletions != nil {
		if err := deletions.Append(entry.SourcePath, destination, info.Size()); err != nil {
			log.Warn("deletion log append failed", logging.Error(err))
		}
	}
}
