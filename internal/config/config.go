package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// StateDir holds the run record and verification report history plus the
	// discovery index database.
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Sorting contains configuration for the date-based destination layout.
type Sorting struct {
	// FolderStructure is one of "YYYY", "YYYY/MM", "YYYY/MM/DD".
	FolderStructure string `toml:"folder_structure"`
}

// Renaming contains configuration for destination filename generation.
type Renaming struct {
	Enabled bool `toml:"enabled"`
	// Pattern supports {date}, {time}, {original} and {tag} placeholders.
	Pattern      string `toml:"pattern"`
	LowercaseExt bool   `toml:"lowercase_ext"`
}

// FolderTags contains configuration for deriving tags from source folder names.
type FolderTags struct {
	Enabled    bool     `toml:"enabled"`
	IgnoreList []string `toml:"ignore_list"`
	MinLength  int      `toml:"min_length"`
	MaxLength  int      `toml:"max_length"`
}

// Duplicates contains the collision policy applied at organize time. It is
// part of the config signature because it affects realized destination paths.
type Duplicates struct {
	// OnCollision is one of "rename", "skip", "overwrite".
	OnCollision string `toml:"on_collision"`
}

// Verify contains configuration for the verification pass.
type Verify struct {
	// Algorithm is "sha256" (default) or "quick" (size comparison only,
	// never cleanup-eligible unless cleanup.allow_quick is set).
	Algorithm string `toml:"algorithm"`
	// ContentSearch enables the destination-tree fallback scan in
	// reconstruction mode when the expected path is absent.
	ContentSearch bool `toml:"content_search"`
	// IncludeDryRuns includes dry-run records in discovery candidates.
	IncludeDryRuns bool `toml:"include_dry_runs"`
}

// Cleanup contains configuration for source deletion.
type Cleanup struct {
	// DryRunDefault keeps cleanup in simulation mode unless overridden.
	DryRunDefault bool `toml:"dry_run_default"`
	// AllowQuick permits deletion of entries verified with the quick
	// algorithm. Off by default: quick answers "looks plausible", not
	// "is proven identical".
	AllowQuick bool `toml:"allow_quick"`
	// DeletionLog appends one JSON line per deleted file to
	// <state_dir>/deletions.jsonl.
	DeletionLog bool `toml:"deletion_log"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for snapvault.
//
// Configuration sections by subsystem:
//   - Paths: state and log directories
//   - Sorting, Renaming, FolderTags, Duplicates: destination mapping rules
//     (these four feed the config signature recorded with every run)
//   - Verify: hash algorithm and reconstruction fallbacks
//   - Cleanup: deletion gating defaults
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Sorting    Sorting    `toml:"sorting"`
	Renaming   Renaming   `toml:"renaming"`
	FolderTags FolderTags `toml:"folder_tags"`
	Duplicates Duplicates `toml:"duplicates"`
	Verify     Verify     `toml:"verify"`
	Cleanup    Cleanup    `toml:"cleanup"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/snapvault/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("snapvault.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories plus the record and
// report subdirectories under the state dir.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir, c.RunsDir(), c.ReportsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RunsDir returns the directory holding run record artifacts.
func (c *Config) RunsDir() string {
	return filepath.Join(c.Paths.StateDir, "runs")
}

// ReportsDir returns the directory holding verification report artifacts.
func (c *Config) ReportsDir() string {
	return filepath.Join(c.Paths.StateDir, "reports")
}

// IndexPath returns the location of the discovery index database.
func (c *Config) IndexPath() string {
	return filepath.Join(c.Paths.StateDir, "index.db")
}

// LockPath returns the location of the state directory writer lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "state.lock")
}

// DeletionLogPath returns the location of the append-only deletion log.
func (c *Config) DeletionLogPath() string {
	return filepath.Join(c.Paths.StateDir, "deletions.jsonl")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
