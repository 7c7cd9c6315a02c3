package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snapvault/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "snapvault", "state")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Sorting.FolderStructure != "YYYY/MM" {
		t.Fatalf("unexpected folder structure: %q", cfg.Sorting.FolderStructure)
	}
	if cfg.Verify.Algorithm != "sha256" {
		t.Fatalf("unexpected verify algorithm: %q", cfg.Verify.Algorithm)
	}
	if !cfg.Cleanup.DryRunDefault {
		t.Fatal("expected cleanup to default to dry run")
	}
	if cfg.Cleanup.AllowQuick {
		t.Fatal("expected quick cleanup to be disallowed by default")
	}
	if cfg.RunsDir() != filepath.Join(wantState, "runs") {
		t.Fatalf("unexpected runs dir: %q", cfg.RunsDir())
	}
	if cfg.ReportsDir() != filepath.Join(wantState, "reports") {
		t.Fatalf("unexpected reports dir: %q", cfg.ReportsDir())
	}
}

func TestLoadParsesFileOverrides(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`state_dir = "` + filepath.Join(tempDir, "state") + `"`,
		"[sorting]",
		`folder_structure = "YYYY/MM/DD"`,
		"[verify]",
		`algorithm = "quick"`,
		"content_search = true",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Sorting.FolderStructure != "YYYY/MM/DD" {
		t.Fatalf("unexpected folder structure: %q", cfg.Sorting.FolderStructure)
	}
	if cfg.Verify.Algorithm != "quick" {
		t.Fatalf("unexpected algorithm: %q", cfg.Verify.Algorithm)
	}
	if !cfg.Verify.ContentSearch {
		t.Fatal("expected content search enabled")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"folder structure", func(c *config.Config) { c.Sorting.FolderStructure = "MM/YYYY" }},
		{"collision policy", func(c *config.Config) { c.Duplicates.OnCollision = "explode" }},
		{"algorithm", func(c *config.Config) { c.Verify.Algorithm = "md5" }},
		{"tag lengths", func(c *config.Config) { c.FolderTags.MinLength = 50 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.FolderTags.MinLength = 3
			cfg.FolderTags.MaxLength = 40
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestEnsureDirectoriesCreatesStateLayout(t *testing.T) {
	tempDir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(tempDir, "state")
	cfg.Paths.LogDir = filepath.Join(tempDir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir, cfg.RunsDir(), cfg.ReportsDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s to exist: %v", dir, err)
		}
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[verify]") {
		t.Fatalf("sample config missing verify section: %q", data)
	}
}
