package testsupport

import (
	"context"
	"testing"

	"vidscribe/internal/config"
	"vidscribe/internal/ledger"
)

// MustOpenStore opens a ledger.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRun registers a run with planned chunks for tests using the provided store.
func NewRun(t testing.TB, store *ledger.Store, runID, source string, spans []ledger.ChunkSpan) {
	t.Helper()

	if err := store.BeginRun(context.Background(), runID, source, 30, spans); err != nil {
		t.Fatalf("store.BeginRun: %v", err)
	}
}
