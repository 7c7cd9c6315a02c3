package testsupport

import (
	"testing"

	"snapvault/internal/config"
	"snapvault/internal/store"
)

// MustOpenStore opens the discovery index for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg, nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}
