package cleanup

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// deletionRecord is one line of the deletion log: what was removed, which
// archived copy justified it, and when.
type deletionRecord struct {
	DeletedAt       time.Time `json:"deleted_at"`
	SourcePath      string    `json:"source_path"`
	DestinationPath string    `json:"destination_path"`
	Size            int64     `json:"size"`
}

type deletionLogger struct {
	file *os.File
}

func openDeletionLogger(path string) (*deletionLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open deletion log: %w", err)
	}
	return &deletionLogger{file: file}, nil
}

func (d *deletionLogger) Append(sourcePath, destinationPath string, size int64) error {
	payload, err := json.Marshal(deletionRecord{
		DeletedAt:       time.Now().UTC(),
		SourcePath:      sourcePath,
		DestinationPath: destinationPath,
		Size:            size,
	})
	if err != nil {
		return fmt.Errorf("encode deletion record: %w", err)
	}
	if _, err := d.file.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("append deletion record: %w", err)
	}
	return nil
}

func (d *deletionLogger) Close() error {
	return d.file.Close()
}
