// Package doctor runs environment health checks: directory access, free
// disk space, and discovery index integrity. Checks return findings instead
// of failing fast so the operator sees the whole picture at once.
package doctor

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"snapvault/internal/config"
	"snapvault/internal/store"
)

// Result is one check's outcome.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minFreeBytes is the free-space floor below which a check fails: hashing
// needs no space, but WAL files and report artifacts do.
const minFreeBytes = 256 << 20

// Run executes every check against the configured environment.
func Run(ctx context.Context, cfg *config.Config) []Result {
	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Runs directory", cfg.RunsDir()),
		CheckDirectoryAccess("Reports directory", cfg.ReportsDir()),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckFreeSpace("State free space", cfg.Paths.StateDir),
	}
	results = append(results, CheckIndex(ctx, cfg))
	return results
}

// CheckDirectoryAccess verifies the directory exists and is readable and
// writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has headroom for new
// artifacts.
func CheckFreeSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s (%.1f GiB free)", path, float64(free)/(1<<30))
	if free < minFreeBytes {
		return Result{Name: name, Detail: detail + " (low)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckIndex opens the discovery index and counts what it knows.
func CheckIndex(ctx context.Context, cfg *config.Config) Result {
	const name = "Discovery index"
	st, err := store.Open(cfg, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.IndexPath(), err)}
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, store.Filter{IncludeDryRuns: true})
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("query runs: %v", err)}
	}
	reports, err := st.ListReports(ctx, store.Filter{})
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("query reports: %v", err)}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%d runs, %d reports)", cfg.IndexPath(), len(runs), len(reports)),
	}
}
