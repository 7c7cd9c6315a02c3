package runlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// line is the JSONL framing shared by every record document: exactly one
// header line, zero or more entry lines, and an optional summary footer.
type line struct {
	Kind    string   `json:"kind"`
	Header  *Header  `json:"header,omitempty"`
	Entry   *Entry   `json:"entry,omitempty"`
	Summary *Summary `json:"summary,omitempty"`
}

const (
	kindHeader  = "header"
	kindEntry   = "entry"
	kindSummary = "summary"
)

// Writer appends run record entries to disk as operations complete. Entries
// are written one line at a time so memory stays bounded on six-figure
// libraries and a crash mid-run still leaves a usable partial record.
type Writer struct {
	file      *os.File
	path      string
	header    Header
	summary   Summary
	started   time.Time
	finalized bool
}

// Begin creates a new run record document under dir and durably writes its
// header. The returned writer must be closed via Finalize or Close.
func Begin(dir, sourceRoot, destinationRoot string, mode Mode, configSignature string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create runs directory: %w", err)
	}

	now := time.Now()
	header := Header{
		SchemaVersion:   SchemaVersion,
		RunID:           NewRunID(now),
		CreatedAt:       now.UTC(),
		SourceRoot:      sourceRoot,
		DestinationRoot: destinationRoot,
		Mode:            mode,
		ConfigSignature: configSignature,
	}

	path := filepath.Join(dir, Filename(header.RunID, mode))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create run record %s: %w", path, err)
	}

	w := &Writer{file: file, path: path, header: header, started: now}
	if err := w.writeLine(line{Kind: kindHeader, Header: &header}); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return nil, err
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("sync run record header: %w", err)
	}
	return w, nil
}

// RunID returns the identifier assigned at Begin.
func (w *Writer) RunID() string { return w.header.RunID }

// Path returns the artifact location on disk.
func (w *Writer) Path() string { return w.path }

// Header returns a copy of the record header.
func (w *Writer) Header() Header { return w.header }

// RecordCopy appends a copy operation.
func (w *Writer) RecordCopy(sourcePath, destinationPath string) error {
	return w.record(Entry{SourcePath: sourcePath, DestinationPath: destinationPath, Operation: OpCopy})
}

// RecordMove appends a move operation.
func (w *Writer) RecordMove(sourcePath, destinationPath string) error {
	return w.record(Entry{SourcePath: sourcePath, DestinationPath: destinationPath, Operation: OpMove})
}

// RecordSkip appends a skipped file with the reason it was not organized.
func (w *Writer) RecordSkip(sourcePath, reason string) error {
	return w.record(Entry{SourcePath: sourcePath, Operation: OpSkip, Reason: reason})
}

func (w *Writer) record(entry Entry) error {
	if w.finalized {
		return errors.New("run record already finalized")
	}
	switch entry.Operation {
	case OpCopy:
		w.summary.Copied++
	case OpMove:
		w.summary.Moved++
	case OpSkip:
		w.summary.Skipped++
	}
	w.summary.Total++
	return w.writeLine(line{Kind: kindEntry, Entry: &entry})
}

// Finalize appends the summary footer, syncs, and closes the document.
func (w *Writer) Finalize() (Summary, error) {
	if w.finalized {
		return w.summary, errors.New("run record already finalized")
	}
	w.finalized = true
	w.summary.DurationSeconds = time.Since(w.started).Seconds()

	if err := w.writeLine(line{Kind: kindSummary, Summary: &w.summary}); err != nil {
		_ = w.file.Close()
		return w.summary, err
	}
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return w.summary, fmt.Errorf("sync run record: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return w.summary, fmt.Errorf("close run record: %w", err)
	}
	return w.summary, nil
}

// Close abandons the writer without a footer. The partial document remains on
// disk and is valid verification input.
func (w *Writer) Close() error {
	if w.finalized {
		return nil
	}
	w.finalized = true
	return w.file.Close()
}

func (w *Writer) writeLine(l line) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode run record line: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.file.Write(data); err != nil {
		return fmt.Errorf("append run record line: %w", err)
	}
	return nil
}
