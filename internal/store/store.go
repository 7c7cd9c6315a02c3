package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"snapvault/internal/config"
	"snapvault/internal/logging"
)

// Store is the discovery index over run record and verification report
// artifacts, backed by SQLite. It answers "which runs/reports exist for these
// roots" without opening every artifact; the JSONL documents on disk remain
// authoritative and the index can always be rebuilt from them.
type Store struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	cfg    *config.Config
	logger *slog.Logger
}

const lockRetryDelay = 100 * time.Millisecond

// Open initializes or connects to the index database and applies the schema.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.IndexPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:     db,
		path:   dbPath,
		lock:   flock.New(cfg.LockPath()),
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "store"),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the index database location.
func (s *Store) Path() string {
	return s.path
}

// withWriteLock serializes index mutation across processes via the state
// lock file.
func (s *Store) withWriteLock(ctx context.Context, op func() error) error {
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire state lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire state lock: lock is held")
	}
	defer func() { _ = s.lock.Unlock() }()
	return op()
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
