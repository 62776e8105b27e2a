package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/ledgerload/internal/ir"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// putParty registers a party, or updates its key and notary flag if the
// name is already known. Names are stored as given; callers canonicalise.
func putParty(ctx context.Context, ex execer, p ir.Party, notary bool) error {
	if p.Name == "" {
		return fmt.Errorf("register party: name is required")
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO parties (name, owning_key, notary, seq)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM parties))
		ON CONFLICT(name) DO UPDATE SET
			owning_key = excluded.owning_key,
			notary = excluded.notary
	`, p.Name, p.OwningKey, boolToInt(notary))
	if err != nil {
		return fmt.Errorf("register party %q: %w", p.Name, err)
	}
	return nil
}

// Party returns the party registered under name, or nil.
func (s *Store) Party(ctx context.Context, name string) (*ir.Party, error) {
	var p ir.Party
	err := s.db.QueryRowContext(ctx, `
		SELECT name, owning_key FROM parties WHERE name = ?
	`, name).Scan(&p.Name, &p.OwningKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query party %q: %w", name, err)
	}
	return &p, nil
}

// Notaries lists notaries in registration order.
func (s *Store) Notaries(ctx context.Context) ([]ir.Party, error) {
	return s.listParties(ctx, `
		SELECT name, owning_key FROM parties
		WHERE notary = 1
		ORDER BY seq ASC, name COLLATE BINARY ASC
	`)
}

// Parties lists every registered party in registration order.
func (s *Store) Parties(ctx context.Context) ([]ir.Party, error) {
	return s.listParties(ctx, `
		SELECT name, owning_key FROM parties
		ORDER BY seq ASC, name COLLATE BINARY ASC
	`)
}

func (s *Store) listParties(ctx context.Context, query string) ([]ir.Party, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query parties: %w", err)
	}
	defer rows.Close()

	parties := []ir.Party{}
	for rows.Next() {
		var p ir.Party
		if err := rows.Scan(&p.Name, &p.OwningKey); err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		parties = append(parties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parties: %w", err)
	}
	return parties, nil
}
