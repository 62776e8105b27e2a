package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/ledgerload/internal/ir"
)

func latestVersion() int {
	return migrations[len(migrations)-1].version
}

func TestOpen_CreatesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
	if _, _, err := s.Record(ctx, createTestEntry("c1", "flow.A")); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	e, err := s.Lookup(ctx, "c1")
	if err != nil || e == nil {
		t.Fatalf("Lookup() after reopen = %v, %v; want the recorded entry", e, err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	if _, err := Open("/nonexistent/dir/node.db"); err == nil {
		t.Error("expected error for a path in a missing directory")
	}
}

func TestOpen_ConnectionSettings(t *testing.T) {
	s := createTestStore(t)

	tests := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"busy_timeout": "5000",
	}
	for pragma, want := range tests {
		var got string
		if err := s.db.QueryRow("PRAGMA " + pragma).Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s failed: %v", pragma, err)
		}
		if got != want {
			t.Errorf("PRAGMA %s = %q, want %q", pragma, got, want)
		}
	}
}

func TestOpen_WithNetwork(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.db")
	ctx := context.Background()
	network := Network{
		Notaries: []ir.Party{{Name: "O=Notary,L=London,C=GB", OwningKey: "n"}},
		Parties:  []ir.Party{{Name: "O=Bank B,L=New York,C=US", OwningKey: "b"}},
	}

	s, err := Open(path, WithNetwork(network))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	notaries, err := s.Notaries(ctx)
	if err != nil || len(notaries) != 1 || notaries[0] != network.Notaries[0] {
		t.Errorf("Notaries() = %v, %v; want %v", notaries, err, network.Notaries)
	}
	s.Close()

	// Reopening with the same network leaves one row per identity.
	s, err = Open(path, WithNetwork(network))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	all, err := s.Parties(ctx)
	if err != nil || len(all) != network.Size() {
		t.Errorf("Parties() = %v, %v; want %d parties", all, err, network.Size())
	}
}

func TestOpen_WithNetworkIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.db")
	network := Network{
		Notaries: []ir.Party{{Name: "O=Notary,L=London,C=GB", OwningKey: "n"}},
		Parties:  []ir.Party{{OwningKey: "nameless"}},
	}

	if _, err := Open(path, WithNetwork(network)); err == nil {
		t.Fatal("expected error for a party without a name")
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()
	all, err := s.Parties(context.Background())
	if err != nil {
		t.Fatalf("Parties() failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("Parties() = %v, want none after a failed registration", all)
	}
}

func TestPing(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "node.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() on open store: %v", err)
	}

	s.Close()
	if err := s.Ping(context.Background()); err == nil {
		t.Error("Ping() on closed store should fail")
	}
}

func TestSchema_Columns(t *testing.T) {
	s := createTestStore(t)

	tests := map[string][]string{
		"parties": {"name", "owning_key", "notary", "seq"},
		"flow_journal": {
			"client_id", "flow", "args", "outcome", "result",
			"error_code", "error_message", "duration_us", "starts", "seq",
		},
	}
	for table, want := range tests {
		columns := getTableColumns(t, s.db, table)
		for _, col := range want {
			if !contains(columns, col) {
				t.Errorf("%s missing column %q", table, col)
			}
		}
	}
}

func TestConstraint_FlowJournalOutcome(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`
		INSERT INTO flow_journal (client_id, flow, args, outcome, duration_us, seq)
		VALUES ('c1', 'f', '[]', 'pending', 0, 1)
	`)
	if err == nil {
		t.Error("expected CHECK constraint violation for unknown outcome")
	}
}

func TestConstraint_FlowJournalUniqueClientID(t *testing.T) {
	s := createTestStore(t)

	insert := `
		INSERT INTO flow_journal (client_id, flow, args, outcome, duration_us, seq)
		VALUES ('c1', 'f', '[]', 'completed', 0, ?)
	`
	if _, err := s.db.Exec(insert, 1); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := s.db.Exec(insert, 2); err == nil {
		t.Error("expected UNIQUE constraint violation for duplicate client_id")
	}
}

func TestMigrate_NewDatabaseIsCurrent(t *testing.T) {
	s := createTestStore(t)

	v, err := s.version(context.Background())
	if err != nil {
		t.Fatalf("version() failed: %v", err)
	}
	if v != latestVersion() {
		t.Errorf("user_version = %d, want %d", v, latestVersion())
	}
}

func TestMigrate_UpgradesVersionZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	v, err := s.version(context.Background())
	if err != nil {
		t.Fatalf("version() failed: %v", err)
	}
	if v != latestVersion() {
		t.Errorf("user_version = %d, want %d after upgrade", v, latestVersion())
	}
	if indexes := getTableIndexes(t, s.db, "flow_journal"); !contains(indexes, "idx_flow_journal_flow") {
		t.Errorf("indexes = %v, want idx_flow_journal_flow", indexes)
	}
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan index: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
