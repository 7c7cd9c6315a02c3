package testsupport

import (
	"path/filepath"
	"testing"

	"snapvault/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithAlgorithm overrides the verification hash algorithm.
func WithAlgorithm(algorithm string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Verify.Algorithm = algorithm
	}
}

// WithContentSearch toggles the reconstruction content-search fallback.
func WithContentSearch(enabled bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Verify.ContentSearch = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
