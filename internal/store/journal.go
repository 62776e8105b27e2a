package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/ledgerload/internal/ir"
)

// Journal outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Entry is the journal record of one client id.
type Entry struct {
	ClientID     string
	Flow         string
	Args         ir.Array
	Outcome      string
	Result       json.RawMessage
	ErrorCode    int
	ErrorMessage string
	Duration     time.Duration
	Starts       int
	Seq          int64
}

// Record journals a started flow. If the client id is already journaled,
// nothing is overwritten: the start counter is bumped and the recorded
// entry is returned with created=false.
func (s *Store) Record(ctx context.Context, e Entry) (stored Entry, created bool, err error) {
	if e.ClientID == "" {
		return Entry{}, false, fmt.Errorf("record flow: client id is required")
	}
	if e.Outcome != OutcomeCompleted && e.Outcome != OutcomeFailed {
		return Entry{}, false, fmt.Errorf("record flow: invalid outcome %q", e.Outcome)
	}
	argsJSON, err := marshalArgs(e.Args)
	if err != nil {
		return Entry{}, false, fmt.Errorf("record flow: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, false, fmt.Errorf("record flow: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO flow_journal
		(client_id, flow, args, outcome, result, error_code, error_message, duration_us, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM flow_journal))
		ON CONFLICT(client_id) DO NOTHING
	`,
		e.ClientID,
		e.Flow,
		argsJSON,
		e.Outcome,
		string(e.Result),
		e.ErrorCode,
		e.ErrorMessage,
		e.Duration.Microseconds(),
	)
	if err != nil {
		return Entry{}, false, fmt.Errorf("record flow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Entry{}, false, fmt.Errorf("record flow: %w", err)
	}
	created = n == 1

	if !created {
		if _, err := tx.ExecContext(ctx, `
			UPDATE flow_journal SET starts = starts + 1 WHERE client_id = ?
		`, e.ClientID); err != nil {
			return Entry{}, false, fmt.Errorf("record flow: %w", err)
		}
	}

	stored, err = scanEntry(tx.QueryRowContext(ctx, selectEntry+` WHERE client_id = ?`, e.ClientID))
	if err != nil {
		return Entry{}, false, fmt.Errorf("record flow: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Entry{}, false, fmt.Errorf("record flow: %w", err)
	}
	return stored, created, nil
}

// Lookup returns the journal entry for a client id, or nil.
func (s *Store) Lookup(ctx context.Context, clientID string) (*Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, selectEntry+` WHERE client_id = ?`, clientID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", clientID, err)
	}
	return &e, nil
}

// Entries lists journal entries for a flow in journal order. An empty flow
// lists every entry.
func (s *Store) Entries(ctx context.Context, flow string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectEntry+`
		WHERE ? = '' OR flow = ?
		ORDER BY seq ASC, client_id COLLATE BINARY ASC
	`, flow, flow)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

const selectEntry = `
	SELECT client_id, flow, args, outcome, result, error_code, error_message, duration_us, starts, seq
	FROM flow_journal`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		e          Entry
		argsJSON   string
		result     string
		durationUS int64
	)
	if err := row.Scan(
		&e.ClientID,
		&e.Flow,
		&argsJSON,
		&e.Outcome,
		&result,
		&e.ErrorCode,
		&e.ErrorMessage,
		&durationUS,
		&e.Starts,
		&e.Seq,
	); err != nil {
		return Entry{}, err
	}

	args, err := unmarshalArgs(argsJSON)
	if err != nil {
		return Entry{}, err
	}
	e.Args = args
	if result != "" {
		e.Result = json.RawMessage(result)
	}
	e.Duration = time.Duration(durationUS) * time.Microsecond
	return e, nil
}
