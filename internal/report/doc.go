// Package report defines the verification report document: one append-only
// JSON Lines artifact per verification pass, carrying a header, a verdict
// entry per source file, and a summary footer once the pass completes. The
// status set is closed, and cleanup eligibility is derived from status alone.
package report
