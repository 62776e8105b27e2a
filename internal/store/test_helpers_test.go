package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/ledgerload/internal/ir"
)

// createTestStore creates a new file-backed store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEntry creates a completed journal entry with minimal fields.
func createTestEntry(clientID, flow string, args ...ir.Value) Entry {
	return Entry{
		ClientID: clientID,
		Flow:     flow,
		Args:     ir.Array(args),
		Outcome:  OutcomeCompleted,
		Result:   []byte(`{"tx":"` + clientID + `"}`),
		Duration: 1500 * time.Microsecond,
	}
}
