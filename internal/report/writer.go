package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"snapvault/internal/hashing"
)

const (
	kindHeader  = "header"
	kindEntry   = "entry"
	kindSummary = "summary"
)

// line is the JSON Lines frame. Exactly one of the payload fields is set,
// selected by Kind.
type line struct {
	Kind    string   `json:"kind"`
	Header  *Header  `json:"header,omitempty"`
	Entry   *Entry   `json:"entry,omitempty"`
	Summary *Summary `json:"summary,omitempty"`
}

// Writer appends verification report entries as they are produced. Entries
// hit the file immediately, so a crash mid-pass leaves a readable partial
// report rather than nothing.
type Writer struct {
	header  Header
	file    *os.File
	buf     *bufio.Writer
	path    string
	summary Summary
	started time.Time
	closed  bool
}

// Begin creates the report artifact in dir and writes its header line. The
// file must not already exist.
func Begin(dir, sourceRoot, destinationRoot string, input InputSource, runID string, algorithm hashing.Algorithm) (*Writer, error) {
	now := time.Now().UTC()
	header := Header{
		SchemaVersion:   SchemaVersion,
		VerifyID:        NewVerifyID(now),
		CreatedAt:       now,
		SourceRoot:      sourceRoot,
		DestinationRoot: destinationRoot,
		InputSource:     input,
		RunID:           runID,
		HashAlgorithm:   algorithm,
	}
	path := filepath.Join(dir, Filename(header.VerifyID))
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create verification report: %w", err)
	}
	w := &Writer{
		header:  header,
		file:    file,
		buf:     bufio.NewWriter(file),
		path:    path,
		started: now,
	}
	if err := w.writeLine(line{Kind: kindHeader, Header: &header}); err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}
	if err := w.flush(); err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

// Header returns the header written at Begin time.
func (w *Writer) Header() Header {
	return w.header
}

// Path returns the artifact location on disk.
func (w *Writer) Path() string {
	return w.path
}

// Record appends one verdict and updates the running histogram.
func (w *Writer) Record(entry Entry) error {
	if w.closed {
		return fmt.Errorf("verification report %s already closed", w.header.VerifyID)
	}
	if err := w.writeLine(line{Kind: kindEntry, Entry: &entry}); err != nil {
		return err
	}
	w.summary.add(entry.Status)
	return w.flush()
}

// Finalize writes the summary footer and closes the artifact.
func (w *Writer) Finalize() (Summary, error) {
	if w.closed {
		return w.summary, fmt.Errorf("verification report %s already closed", w.header.VerifyID)
	}
	w.summary.DurationSeconds = time.Since(w.started).Seconds()
	if err := w.writeLine(line{Kind: kindSummary, Summary: &w.summary}); err != nil {
		return w.summary, err
	}
	if err := w.flush(); err != nil {
		return w.summary, err
	}
	if err := w.file.Sync(); err != nil {
		return w.summary, fmt.Errorf("sync verification report: %w", err)
	}
	w.closed = true
	if err := w.file.Close(); err != nil {
		return w.summary, fmt.Errorf("close verification report: %w", err)
	}
	return w.summary, nil
}

// Close abandons the report without a footer. The partial artifact stays
// valid for readers.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

func (w *Writer) writeLine(l line) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode report line: %w", err)
	}
	if _, err := w.buf.Write(payload); err != nil {
		return fmt.Errorf("write report line: %w", err)
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("write report line: %w", err)
	}
	return nil
}

func (w *Writer) flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush verification report: %w", err)
	}
	return nil
}
