package runlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the run record document version. Evolution is additive
// only: new optional fields, never repurposed ones.
const SchemaVersion = 1

// Mode describes how the organizing run executed.
type Mode string

const (
	ModeDryRun   Mode = "dry_run"
	ModeLiveCopy Mode = "live_copy"
	ModeLiveMove Mode = "live_move"
)

// ParseMode validates a stored mode value.
func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case ModeDryRun, ModeLiveCopy, ModeLiveMove:
		return Mode(value), nil
	default:
		return "", fmt.Errorf("unknown run mode %q", value)
	}
}

// Operation describes what the organizing run did with one source file.
type Operation string

const (
	OpCopy Operation = "copy"
	OpMove Operation = "move"
	OpSkip Operation = "skip"
)

// Entry is one realized file operation. DestinationPath is empty for skips;
// Reason explains why a file was skipped.
type Entry struct {
	SourcePath      string    `json:"source_path"`
	DestinationPath string    `json:"destination_path,omitempty"`
	Operation       Operation `json:"operation"`
	Reason          string    `json:"reason,omitempty"`
}

// Header carries run metadata and is the first line of every record document.
type Header struct {
	SchemaVersion   int       `json:"schema_version"`
	RunID           string    `json:"run_id"`
	CreatedAt       time.Time `json:"created_at"`
	SourceRoot      string    `json:"source_root"`
	DestinationRoot string    `json:"destination_root"`
	Mode            Mode      `json:"mode"`
	ConfigSignature string    `json:"config_signature"`
}

// Summary aggregates entry counts. It lands in the footer line when a run
// finalizes; records without a footer report counts tallied while streaming.
type Summary struct {
	Total           int     `json:"total"`
	Copied          int     `json:"copied"`
	Moved           int     `json:"moved"`
	Skipped         int     `json:"skipped"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Record is a fully loaded run record. Finalized is false for records whose
// writer crashed mid-run; such records are valid verification input for the
// entries that were written.
type Record struct {
	Header
	Entries   []Entry
	Summary   Summary
	Finalized bool
}

// VerifiableEntries returns copy entries with destinations, the only entries
// whose integrity can be proven by comparing two live files.
func (r *Record) VerifiableEntries() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Operation == OpCopy && e.DestinationPath != "" {
			out = append(out, e)
		}
	}
	return out
}

// NewRunID builds an identifier that sorts lexically by creation time:
// YYYYMMDD_HHMMSS plus a uuid fragment against same-second collisions.
func NewRunID(t time.Time) string {
	fragment := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return t.Format("20060102_150405") + "_" + fragment
}

// Filename returns the artifact name for a run record. Dry runs are marked in
// the name so discovery can exclude them without opening the file.
func Filename(runID string, mode Mode) string {
	if mode == ModeDryRun {
		return runID + "_run_dryrun.jsonl"
	}
	return runID + "_run.jsonl"
}
