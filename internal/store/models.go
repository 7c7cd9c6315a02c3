package store

import (
	"time"

	"snapvault/internal/hashing"
	"snapvault/internal/report"
	"snapvault/internal/runlog"
)

// RunInfo is one indexed run record: header metadata plus summary counts and
// the artifact location. The artifact remains the source of truth; RunInfo is
// enough to list, filter, and open it.
type RunInfo struct {
	RunID           string
	CreatedAt       time.Time
	SourceRoot      string
	DestinationRoot string
	Mode            runlog.Mode
	ConfigSignature string
	Total           int
	Copied          int
	Moved           int
	Skipped         int
	Finalized       bool
	Path            string
}

// ReportInfo is one indexed verification report.
type ReportInfo struct {
	VerifyID        string
	CreatedAt       time.Time
	SourceRoot      string
	DestinationRoot string
	InputSource     report.InputSource
	RunID           string
	HashAlgorithm   hashing.Algorithm
	Summary         report.Summary
	Finalized       bool
	Path            string
}

// Filter narrows discovery queries. Root and signature filters are hard
// constraints: a record for different roots is never a candidate, no matter
// how recent.
type Filter struct {
	SourceRoot      string
	DestinationRoot string
	ConfigSignature string
	IncludeDryRuns  bool
	Limit           int
}
