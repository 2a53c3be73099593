package testutil

import (
	"testing"

	"github.com/inkwell/engage/internal/store"
)

// NewTestArchive creates an in-memory Archive with all migrations applied.
// It automatically closes the archive when the test completes.
func NewTestArchive(t *testing.T) *store.Archive {
	t.Helper()

	a, err := store.NewArchive(":memory:")
	if err != nil {
		t.Fatalf("creating test archive: %v", err)
	}

	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("closing test archive: %v", err)
		}
	})

	return a
}
