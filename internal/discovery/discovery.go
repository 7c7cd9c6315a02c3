// Package discovery selects a prior run or verification report for a
// command to operate on. It queries the index with hard root/signature
// filters and resolves multiple candidates according to a selection mode,
// delegating any prompting to an injected chooser.
package discovery

import (
	"context"
	"errors"
	"fmt"

	"snapvault/internal/store"
)

// Mode controls how multiple candidates are resolved.
type Mode string

const (
	// ModeInteractive presents candidates through the chooser.
	ModeInteractive Mode = "interactive"
	// ModeLast picks the newest candidate without asking.
	ModeLast Mode = "last"
	// ModeByID requires an explicit id and bypasses ranking entirely.
	ModeByID Mode = "by-id"
	// ModeRequireExplicit refuses to guess: more than one candidate is an
	// error. The non-TTY default, so scripts never act on a silent guess.
	ModeRequireExplicit Mode = "require-explicit"
)

// ErrNoCandidates means the filter matched nothing.
var ErrNoCandidates = errors.New("no matching records found")

// ErrAmbiguous means several candidates matched and the mode does not
// permit picking one automatically.
var ErrAmbiguous = errors.New("multiple matching records")

// RunChooser prompts for one run among candidates. Implementations return
// the index of the chosen candidate.
type RunChooser interface {
	ChooseRun(candidates []store.RunInfo) (int, error)
}

// ReportChooser prompts for one verification report among candidates.
type ReportChooser interface {
	ChooseReport(candidates []store.ReportInfo) (int, error)
}

// SelectRun resolves the run a command should verify against.
func SelectRun(ctx context.Context, st *store.Store, filter store.Filter, mode Mode, id string, chooser RunChooser) (store.RunInfo, error) {
	if mode == ModeByID {
		if id == "" {
			return store.RunInfo{}, fmt.Errorf("run id is required")
		}
		info, err := st.FindRun(ctx, id)
		if err != nil {
			return store.RunInfo{}, err
		}
		if info == nil {
			return store.RunInfo{}, fmt.Errorf("%w: run %s is not indexed (try 'snapvault reindex')", ErrNoCandidates, id)
		}
		return *info, nil
	}

	candidates, err := st.ListRuns(ctx, filter)
	if err != nil {
		return store.RunInfo{}, err
	}
	switch len(candidates) {
	case 0:
		return store.RunInfo{}, fmt.Errorf("%w: no runs for these roots (was the archive produced elsewhere, or does the index need 'snapvault reindex'?)", ErrNoCandidates)
	case 1:
		return candidates[0], nil
	}

	switch mode {
	case ModeLast:
		return candidates[0], nil
	case ModeInteractive:
		if chooser == nil {
			return store.RunInfo{}, fmt.Errorf("interactive selection requires a chooser")
		}
		idx, err := chooser.ChooseRun(candidates)
		if err != nil {
			return store.RunInfo{}, err
		}
		if idx < 0 || idx >= len(candidates) {
			return store.RunInfo{}, fmt.Errorf("selection %d out of range", idx)
		}
		return candidates[idx], nil
	default:
		return store.RunInfo{}, fmt.Errorf("%w: %d runs match; pass --run-id or --last", ErrAmbiguous, len(candidates))
	}
}

// SelectReport resolves the verification report a cleanup should act on.
func SelectReport(ctx context.Context, st *store.Store, filter store.Filter, mode Mode, id string, chooser ReportChooser) (store.ReportInfo, error) {
	if mode == ModeByID {
		if id == "" {
			return store.ReportInfo{}, fmt.Errorf("report id is required")
		}
		info, err := st.FindReport(ctx, id)
		if err != nil {
			return store.ReportInfo{}, err
		}
		if info == nil {
			return store.ReportInfo{}, fmt.Errorf("%w: report %s is not indexed (try 'snapvault reindex')", ErrNoCandidates, id)
		}
		return *info, nil
	}

	candidates, err := st.ListReports(ctx, filter)
	if err != nil {
		return store.ReportInfo{}, err
	}
	switch len(candidates) {
	case 0:
		return store.ReportInfo{}, fmt.Errorf("%w: no verification reports for these roots (run 'snapvault verify' first)", ErrNoCandidates)
	case 1:
		return candidates[0], nil
	}

	switch mode {
	case ModeLast:
		return candidates[0], nil
	case ModeInteractive:
		if chooser == nil {
			return store.ReportInfo{}, fmt.Errorf("interactive selection requires a chooser")
		}
		idx, err := chooser.ChooseReport(candidates)
		if err != nil {
			return store.ReportInfo{}, err
		}
		if idx < 0 || idx >= len(candidates) {
			return store.ReportInfo{}, fmt.Errorf("selection %d out of range", idx)
		}
		return candidates[idx], nil
	default:
		return store.ReportInfo{}, fmt.Errorf("%w: %d reports match; pass --verify-id or --last", ErrAmbiguous, len(candidates))
	}
}
