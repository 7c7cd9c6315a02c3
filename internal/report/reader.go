package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrSchemaVersion marks a report written by a newer snapvault.
var ErrSchemaVersion = errors.New("unsupported verification report schema version")

const scanBufferSize = 1024 * 1024

// ReadHeader opens a report document and returns its header without touching
// the entry stream.
func ReadHeader(path string) (Header, error) {
	file, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("open verification report %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), scanBufferSize)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return Header{}, fmt.Errorf("read verification report %s: %w", path, err)
		}
		return Header{}, fmt.Errorf("verification report %s is empty", path)
	}

	var l line
	if err := json.Unmarshal(scanner.Bytes(), &l); err != nil {
		return Header{}, fmt.Errorf("parse verification report header %s: %w", path, err)
	}
	if l.Kind != kindHeader || l.Header == nil {
		return Header{}, fmt.Errorf("verification report %s does not start with a header line", path)
	}
	if l.Header.SchemaVersion > SchemaVersion {
		return Header{}, fmt.Errorf("%w: %s has version %d, this build reads up to %d",
			ErrSchemaVersion, path, l.Header.SchemaVersion, SchemaVersion)
	}
	return *l.Header, nil
}

// Stream reads a report lazily, invoking fn per entry. The summary comes
// from the footer when present; otherwise it is tallied from the streamed
// entries and finalized is false. A torn trailing line ends the stream
// without error.
func Stream(path string, fn func(Entry) error) (Header, Summary, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return Header{}, Summary{}, false, fmt.Errorf("open verification report %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), scanBufferSize)

	var (
		header    Header
		summary   Summary
		tally     Summary
		finalized bool
		sawHeader bool
	)

	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var l line
		if err := json.Unmarshal(raw, &l); err != nil {
			if !sawHeader {
				return Header{}, Summary{}, false, fmt.Errorf("parse verification report header %s: %w", path, err)
			}
			// Torn tail from an interrupted append.
			break
		}
		switch l.Kind {
		case kindHeader:
			if l.Header == nil {
				return Header{}, Summary{}, false, fmt.Errorf("verification report %s has malformed header", path)
			}
			if l.Header.SchemaVersion > SchemaVersion {
				return Header{}, Summary{}, false, fmt.Errorf("%w: %s has version %d, this build reads up to %d",
					ErrSchemaVersion, path, l.Header.SchemaVersion, SchemaVersion)
			}
			header = *l.Header
			sawHeader = true
		case kindEntry:
			if !sawHeader {
				return Header{}, Summary{}, false, fmt.Errorf("verification report %s does not start with a header line", path)
			}
			if l.Entry == nil {
				continue
			}
			tally.add(l.Entry.Status)
			if fn != nil {
				if err := fn(*l.Entry); err != nil {
					return header, tally, false, err
				}
			}
		case kindSummary:
			if l.Summary != nil {
				summary = *l.Summary
				finalized = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return header, tally, false, fmt.Errorf("read verification report %s: %w", path, err)
	}
	if !sawHeader {
		return Header{}, Summary{}, false, fmt.Errorf("verification report %s is empty", path)
	}
	if !finalized {
		summary = tally
	}
	return header, summary, finalized, nil
}

// Load reads an entire report into memory. Cleanup streams instead; this is
// for small reports and tests.
func Load(path string) (*Report, error) {
	rep := &Report{}
	header, summary, finalized, err := Stream(path, func(e Entry) error {
		rep.Entries = append(rep.Entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	rep.Header = header
	rep.Summary = summary
	rep.Finalized = finalized
	return rep, nil
}
