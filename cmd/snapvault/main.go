package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"snapvault/internal/discovery"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps discovery outcomes to distinct codes so scripts can react:
// 2 means nothing matched, 3 means an ambiguous match needs an explicit id.
func exitCode(err error) int {
	switch {
	case errors.Is(err, discovery.ErrNoCandidates):
		return 2
	case errors.Is(err, discovery.ErrAmbiguous):
		return 3
	default:
		return 1
	}
}
