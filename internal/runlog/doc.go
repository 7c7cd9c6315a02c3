// Package runlog models and persists run records: the append-once artifacts
// an organizing run writes to capture its realized source-to-destination
// mapping.
//
// Records are JSON Lines documents: a header line with run metadata, one line
// per file operation appended as the operation completes, and a summary footer
// written at finalize time. The format is deliberately crash-tolerant: a run
// that dies mid-flight leaves a header plus the entries that made it to disk,
// and that partial document is valid verification input rather than an error.
//
// Records are immutable once written. A new run gets a new id; history is
// never edited, only superseded.
package runlog
