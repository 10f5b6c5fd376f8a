package testsupport

import (
	"context"
	"testing"

	"postbeat/internal/config"
	"postbeat/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// RecordPost inserts a post for tests using the provided store.
func RecordPost(t testing.TB, st *store.Store, post *store.Post) int64 {
	t.Helper()

	id, err := st.RecordPost(context.Background(), post)
	if err != nil {
		t.Fatalf("store.RecordPost: %v", err)
	}
	return id
}
