package verify

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"snapvault/internal/config"
	"snapvault/internal/hashing"
	"snapvault/internal/logging"
	"snapvault/internal/report"
	"snapvault/internal/runlog"
	"snapvault/internal/sortrules"
)

// Verifier proves that archived copies match their sources. It never writes
// to source or destination trees; its only output is a verification report.
type Verifier struct {
	algorithm     hashing.Algorithm
	contentSearch bool
	reportsDir    string
	logger        *slog.Logger
}

// Outcome locates the report a verification pass produced.
type Outcome struct {
	VerifyID string
	Path     string
	Summary  report.Summary
}

// New builds a Verifier from config.
func New(cfg *config.Config, logger *slog.Logger) (*Verifier, error) {
	algorithm, err := hashing.ParseAlgorithm(cfg.Verify.Algorithm)
	if err != nil {
		return nil, err
	}
	return &Verifier{
		algorithm:     algorithm,
		contentSearch: cfg.Verify.ContentSearch,
		reportsDir:    cfg.ReportsDir(),
		logger:        logging.NewComponentLogger(logger, "verify"),
	}, nil
}

// Algorithm returns the hash algorithm this verifier proves with.
func (v *Verifier) Algorithm() hashing.Algorithm {
	return v.algorithm
}

// VerifyRecord replays a run record: every recorded copy is hash-compared,
// moves are reported as missing_source (the run consumed the source), and
// skips are carried through. Per-entry I/O failures become error entries;
// only artifact-level problems abort the pass.
func (v *Verifier) VerifyRecord(ctx context.Context, recordPath string) (*Outcome, error) {
	started := time.Now()
	header, err := runlog.ReadHeader(recordPath)
	if err != nil {
		return nil, err
	}

	w, err := report.Begin(v.reportsDir, header.SourceRoot, header.DestinationRoot,
		report.InputRunRecord, header.RunID, v.algorithm)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	ctx = logging.WithRunID(ctx, header.RunID)
	ctx = logging.WithVerifyID(ctx, w.Header().VerifyID)
	log := logging.WithContext(ctx, v.logger)
	log.Info("verifying run record", logging.String("record", recordPath))

	_, _, _, err = runlog.Stream(recordPath, func(entry runlog.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		verdict := v.recordEntryVerdict(entry)
		return w.Record(verdict)
	})
	if err != nil {
		return nil, err
	}

	summary, err := w.Finalize()
	if err != nil {
		return nil, err
	}
	log.Info("verification finished",
		logging.Int("total", summary.Total),
		logging.Int("ok", summary.OK),
		logging.Int("mismatch", summary.Mismatch),
		logging.Duration("elapsed", time.Since(started)))
	return &Outcome{VerifyID: w.Header().VerifyID, Path: w.Path(), Summary: summary}, nil
}

func (v *Verifier) recordEntryVerdict(entry runlog.Entry) report.Entry {
	switch entry.Operation {
	case runlog.OpCopy:
		if entry.DestinationPath == "" {
			return report.Entry{
				SourcePath: entry.SourcePath,
				Status:     report.StatusError,
				MatchType:  report.MatchUnknown,
				Error:      "copy entry has no destination",
			}
		}
		return v.verifyPair(entry.SourcePath, entry.DestinationPath)
	case runlog.OpMove:
		verdict := report.Entry{
			SourcePath:              entry.SourcePath,
			ExpectedDestinationPath: entry.DestinationPath,
			Status:                  report.StatusMissingSource,
			MatchType:               report.MatchExpectedPath,
		}
		if entry.DestinationPath != "" {
			if _, err := os.Stat(entry.DestinationPath); err == nil {
				verdict.DestinationPath = entry.DestinationPath
			}
		}
		return verdict
	default:
		return report.Entry{
			SourcePath: entry.SourcePath,
			Status:     report.StatusSkipped,
			MatchType:  report.MatchUnknown,
			Error:      entry.Reason,
		}
	}
}

// verifyPair compares one source/destination pair at a known expected path.
func (v *Verifier) verifyPair(sourcePath, destinationPath string) report.Entry {
	verdict := report.Entry{
		SourcePath:              sourcePath,
		ExpectedDestinationPath: destinationPath,
		MatchType:               report.MatchExpectedPath,
	}

	if _, err := os.Stat(sourcePath); err != nil {
		if os.IsNotExist(err) {
			verdict.Status = report.StatusMissingSource
			return verdict
		}
		verdict.Status = report.StatusError
		verdict.Error = err.Error()
		return verdict
	}
	if _, err := os.Stat(destinationPath); err != nil {
		if os.IsNotExist(err) {
			verdict.Status = report.StatusMissingDestination
			return verdict
		}
		verdict.Status = report.StatusError
		verdict.Error = err.Error()
		return verdict
	}

	match, srcHash, dstHash, err := hashing.CompareFiles(sourcePath, destinationPath, v.algorithm)
	if err != nil {
		verdict.Status = report.StatusError
		verdict.Error = err.Error()
		return verdict
	}
	verdict.DestinationPath = destinationPath
	verdict.SourceHash = srcHash
	verdict.DestinationHash = dstHash
	if match {
		verdict.Status = report.StatusOK
	} else {
		verdict.Status = report.StatusMismatch
	}
	return verdict
}

// VerifyReconstructed walks the source tree and predicts each file's
// destination from the mapping rules, for archives whose run record is lost.
// Resolution order per file: the expected path, then content search when
// enabled, then missing_destination.
func (v *Verifier) VerifyReconstructed(ctx context.Context, sourceRoot, destinationRoot string, rules sortrules.Rules) (*Outcome, error) {
	started := time.Now()
	if _, err := os.Stat(sourceRoot); err != nil {
		return nil, fmt.Errorf("source root: %w", err)
	}

	w, err := report.Begin(v.reportsDir, sourceRoot, destinationRoot,
		report.InputReconstructed, "", v.algorithm)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	log := logging.WithContext(logging.WithVerifyID(ctx, w.Header().VerifyID), v.logger)
	log.Info("verifying by reconstruction",
		logging.String("source_root", sourceRoot),
		logging.String("destination_root", destinationRoot))

	search := newContentIndex(destinationRoot)
	claimed := make(map[string]string)

	walkErr := filepath.WalkDir(sourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		verdict, err := v.reconstructVerdict(path, destinationRoot, rules, search, claimed)
		if err != nil {
			return err
		}
		return w.Record(verdict)
	})
	if walkErr != nil {
		return nil, walkErr
	}

	summary, err := w.Finalize()
	if err != nil {
		return nil, err
	}
	log.Info("verification finished",
		logging.Int("total", summary.Total),
		logging.Int("ok", summary.OK),
		logging.Int("duplicates", summary.OKExistingDup),
		logging.Int("missing", summary.MissingDestination),
		logging.Duration("elapsed", time.Since(started)))
	return &Outcome{VerifyID: w.Header().VerifyID, Path: w.Path(), Summary: summary}, nil
}

// reconstructVerdict resolves one source file. Rule failures are returned as
// errors because a broken mapping invalidates the whole reconstruction; file
// I/O failures become error entries and the walk continues.
func (v *Verifier) reconstructVerdict(sourcePath, destinationRoot string, rules sortrules.Rules, search *contentIndex, claimed map[string]string) (report.Entry, error) {
	captureTime, err := sortrules.CaptureTime(sourcePath)
	if err != nil {
		// The file vanished or turned unreadable mid-walk.
		return report.Entry{
			SourcePath: sourcePath,
			Status:     report.StatusMissingSource,
			MatchType:  report.MatchUnknown,
		}, nil
	}
	relative, err := rules.ExpectedDestination(sourcePath, captureTime)
	if err != nil {
		return report.Entry{}, err
	}
	expected := filepath.Join(destinationRoot, relative)

	if _, err := os.Stat(expected); err == nil {
		verdict := v.verifyPair(sourcePath, expected)
		if verdict.Status == report.StatusOK {
			if _, taken := claimed[expected]; taken {
				verdict.Status = report.StatusOKExistingDuplicate
			} else {
				claimed[expected] = sourcePath
			}
		}
		return verdict, nil
	}

	verdict := report.Entry{
		SourcePath:              sourcePath,
		ExpectedDestinationPath: expected,
		MatchType:               report.MatchExpectedPath,
	}

	// The source can vanish between the walk and this verdict; settle that
	// before deciding anything about the destination side.
	info, err := os.Stat(sourcePath)
	if err != nil {
		verdict.Status = report.StatusMissingSource
		verdict.MatchType = report.MatchUnknown
		return verdict, nil
	}

	if !v.contentSearch {
		verdict.Status = report.StatusMissingDestination
		return verdict, nil
	}
	if v.algorithm == hashing.Quick {
		verdict.Status = report.StatusMissingDestination
		verdict.Error = "content search requires the sha256 algorithm"
		return verdict, nil
	}

	candidates, err := search.candidates(filepath.Ext(sourcePath), info.Size())
	if err != nil {
		verdict.Status = report.StatusError
		verdict.MatchType = report.MatchContentSearch
		verdict.Error = err.Error()
		return verdict, nil
	}
	if len(candidates) == 0 {
		verdict.Status = report.StatusMissingDestination
		verdict.MatchType = report.MatchContentSearch
		return verdict, nil
	}

	matchPath, srcHash, dstHash, err := hashing.MatchesAny(sourcePath, candidates)
	if err != nil {
		verdict.Status = report.StatusError
		verdict.MatchType = report.MatchContentSearch
		verdict.Error = err.Error()
		return verdict, nil
	}
	verdict.MatchType = report.MatchContentSearch
	verdict.SourceHash = srcHash
	if matchPath == "" {
		verdict.Status = report.StatusMissingDestination
		return verdict, nil
	}
	verdict.DestinationPath = matchPath
	verdict.DestinationHash = dstHash
	verdict.Status = report.StatusOKExistingDuplicate
	return verdict, nil
}

// contentIndex maps (extension, exact size) to candidate files under the
// destination root. The tree is scanned once, on first use.
type contentIndex struct {
	root    string
	byKey   map[string][]string
	scanned bool
}

func newContentIndex(root string) *contentIndex {
	return &contentIndex{root: root}
}

func (c *contentIndex) candidates(ext string, size int64) ([]string, error) {
	if !c.scanned {
		if err := c.scan(); err != nil {
			return nil, err
		}
	}
	return c.byKey[contentKey(ext, size)], nil
}

func (c *contentIndex) scan() error {
	c.byKey = make(map[string][]string)
	c.scanned = true
	return filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees shrink the candidate set; the
			// consequence is missing_destination, not a false ok.
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		key := contentKey(filepath.Ext(path), info.Size())
		c.byKey[key] = append(c.byKey[key], path)
		return nil
	})
}

func contentKey(ext string, size int64) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(ext), size)
}
