package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"snapvault/internal/hashing"
)

// SchemaVersion is the verification report document version. Evolution is
// additive only.
const SchemaVersion = 1

// Status is the closed verdict set for one verified file. Every entry has
// exactly one status, and status fully determines cleanup eligibility.
type Status string

const (
	// StatusOK: digest match at the expected destination path.
	StatusOK Status = "ok"
	// StatusOKExistingDuplicate: digest match found via content search, or
	// at a destination already claimed by another source. Proof of a safe
	// duplicate all the same.
	StatusOKExistingDuplicate Status = "ok_existing_duplicate"
	// StatusMismatch: destination exists but its content differs.
	StatusMismatch Status = "mismatch"
	// StatusMissingDestination: no destination file was found.
	StatusMissingDestination Status = "missing_destination"
	// StatusMissingSource: the source no longer exists (moved files land here).
	StatusMissingSource Status = "missing_source"
	// StatusError: an I/O failure prevented a verdict; cause recorded.
	StatusError Status = "error"
	// StatusSkipped: the run itself chose not to copy this file.
	StatusSkipped Status = "skipped"
)

// AllStatuses lists every status for exhaustive consumers (summaries, CLI).
var AllStatuses = []Status{
	StatusOK,
	StatusOKExistingDuplicate,
	StatusMismatch,
	StatusMissingDestination,
	StatusMissingSource,
	StatusError,
	StatusSkipped,
}

// ParseStatus validates a stored status value.
func ParseStatus(value string) (Status, error) {
	for _, s := range AllStatuses {
		if Status(value) == s {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown verification status %q", value)
}

// CleanupEligible reports whether this status alone permits source deletion.
// The switch is exhaustive on purpose: a new status must make an explicit
// deletion decision here instead of inheriting one.
func (s Status) CleanupEligible() bool {
	switch s {
	case StatusOK, StatusOKExistingDuplicate:
		return true
	case StatusMismatch, StatusMissingDestination, StatusMissingSource, StatusError, StatusSkipped:
		return false
	default:
		return false
	}
}

// MatchType records how the verified destination was located.
type MatchType string

const (
	MatchExpectedPath  MatchType = "expected_path"
	MatchContentSearch MatchType = "content_search"
	MatchUnknown       MatchType = "unknown"
)

// InputSource records where the verified mapping came from.
type InputSource string

const (
	InputRunRecord     InputSource = "run_record"
	InputReconstructed InputSource = "reconstructed"
)

// Entry is the verdict for one source file. DestinationPath is the path that
// was actually verified, which under content search may differ from
// ExpectedDestinationPath.
type Entry struct {
	SourcePath              string    `json:"source_path"`
	ExpectedDestinationPath string    `json:"expected_destination_path,omitempty"`
	DestinationPath         string    `json:"destination_path,omitempty"`
	Status                  Status    `json:"status"`
	MatchType               MatchType `json:"match_type"`
	SourceHash              string    `json:"source_hash,omitempty"`
	DestinationHash         string    `json:"destination_hash,omitempty"`
	Error                   string    `json:"error,omitempty"`
}

// Header carries verification pass metadata.
type Header struct {
	SchemaVersion   int               `json:"schema_version"`
	VerifyID        string            `json:"verify_id"`
	CreatedAt       time.Time         `json:"created_at"`
	SourceRoot      string            `json:"source_root"`
	DestinationRoot string            `json:"destination_root"`
	InputSource     InputSource       `json:"input_source"`
	RunID           string            `json:"run_id,omitempty"`
	HashAlgorithm   hashing.Algorithm `json:"hash_algorithm"`
}

// Summary is the per-status histogram plus pass duration.
type Summary struct {
	Total              int     `json:"total"`
	OK                 int     `json:"ok"`
	OKExistingDup      int     `json:"ok_existing_duplicate"`
	Mismatch           int     `json:"mismatch"`
	MissingDestination int     `json:"missing_destination"`
	MissingSource      int     `json:"missing_source"`
	Errors             int     `json:"error"`
	Skipped            int     `json:"skipped"`
	DurationSeconds    float64 `json:"duration_seconds"`
}

// Count returns the histogram bucket for a status.
func (s Summary) Count(status Status) int {
	switch status {
	case StatusOK:
		return s.OK
	case StatusOKExistingDuplicate:
		return s.OKExistingDup
	case StatusMismatch:
		return s.Mismatch
	case StatusMissingDestination:
		return s.MissingDestination
	case StatusMissingSource:
		return s.MissingSource
	case StatusError:
		return s.Errors
	case StatusSkipped:
		return s.Skipped
	default:
		return 0
	}
}

func (s *Summary) add(status Status) {
	switch status {
	case StatusOK:
		s.OK++
	case StatusOKExistingDuplicate:
		s.OKExistingDup++
	case StatusMismatch:
		s.Mismatch++
	case StatusMissingDestination:
		s.MissingDestination++
	case StatusMissingSource:
		s.MissingSource++
	case StatusError:
		s.Errors++
	case StatusSkipped:
		s.Skipped++
	}
	s.Total++
}

// CleanupEligibleCount is the number of entries whose status permits deletion.
func (s Summary) CleanupEligibleCount() int {
	return s.OK + s.OKExistingDup
}

// Report is a fully loaded verification report.
type Report struct {
	Header
	Entries   []Entry
	Summary   Summary
	Finalized bool
}

// NewVerifyID builds an identifier with the same shape as run ids: sortable
// timestamp prefix plus a uuid fragment.
func NewVerifyID(t time.Time) string {
	fragment := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return t.Format("20060102_150405") + "_" + fragment
}

// Filename returns the artifact name for a verification report.
func Filename(verifyID string) string {
	return verifyID + "_verify.jsonl"
}
