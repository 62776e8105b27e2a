package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/ledgerload/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// migration brings a database to version. schema.sql always describes
// version 0, so a new file walks the same steps as an old one.
type migration struct {
	version int
	stmt    string
}

var migrations = []migration{
	{1, `CREATE INDEX IF NOT EXISTS idx_flow_journal_flow ON flow_journal(flow, seq)`},
}

// Store holds the development node's network map and flow journal.
type Store struct {
	db *sql.DB
}

// Network is the set of identities a node serves.
type Network struct {
	Notaries []ir.Party
	Parties  []ir.Party
}

// Size returns the number of identities in the network.
func (n Network) Size() int {
	return len(n.Notaries) + len(n.Parties)
}

type openOptions struct {
	network *Network
}

// Option configures Open.
type Option func(*openOptions)

// WithNetwork registers the given identities once the schema is current.
// Registration is a single transaction: either every identity is stored or
// Open fails.
func WithNetwork(n Network) Option {
	return func(o *openOptions) {
		o.network = &n
	}
}

// Open creates or opens the node database at path, migrates it to the
// latest version and applies any options.
//
// The connection runs in WAL mode with synchronous=NORMAL and a 5 second
// busy timeout. All access goes through one connection.
func Open(path string, opts ...Option) (*Store, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	s := &Store{db: db}
	if err := s.init(ctx, o); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return s, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_busy_timeout", "5000")
	return "file:" + path + "?" + q.Encode()
}

func (s *Store) init(ctx context.Context, o openOptions) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		return err
	}
	if o.network != nil {
		if err := s.register(ctx, *o.network); err != nil {
			return err
		}
	}
	return nil
}

// migrate runs each pending migration in its own transaction together with
// the user_version bump, so an interrupted upgrade resumes where it stopped.
func (s *Store) migrate(ctx context.Context) error {
	version, err := s.version(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
	}
	return nil
}

func (s *Store) version(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return v, nil
}

func (s *Store) register(ctx context.Context, n Network) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("register network: %w", err)
	}
	defer tx.Rollback()

	for _, p := range n.Notaries {
		if err := putParty(ctx, tx, p, true); err != nil {
			return err
		}
	}
	for _, p := range n.Parties {
		if err := putParty(ctx, tx, p, false); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("register network: %w", err)
	}
	return nil
}

// Ping reports whether the database answers queries.
func (s *Store) Ping(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parties").Scan(&n); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
