package store

import (
	"context"
	"testing"
	"time"

	"github.com/roach88/ledgerload/internal/ir"
)

func TestRecord_New(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	e := createTestEntry("c1", "net.corda.finance.flows.CashIssueFlow",
		ir.Amount(100000, "USD"), ir.OpaqueBytes([]byte{0x01}))

	stored, created, err := s.Record(ctx, e)
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if !created {
		t.Error("created = false, want true for new client id")
	}
	if stored.Starts != 1 {
		t.Errorf("Starts = %d, want 1", stored.Starts)
	}
	if stored.Seq != 1 {
		t.Errorf("Seq = %d, want 1", stored.Seq)
	}
	if stored.Duration != 1500*time.Microsecond {
		t.Errorf("Duration = %v, want 1.5ms", stored.Duration)
	}
	if string(stored.Result) != `{"tx":"c1"}` {
		t.Errorf("Result = %s", stored.Result)
	}

	q, tok, err := ir.AsAmount(stored.Args[0])
	if err != nil || q != 100000 || tok != "USD" {
		t.Errorf("Args[0] = %v (%v), want 100000 USD", stored.Args[0], err)
	}
}

func TestRecord_DuplicateKeepsFirstOutcome(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := createTestEntry("c1", "f")
	if _, _, err := s.Record(ctx, first); err != nil {
		t.Fatalf("first Record() failed: %v", err)
	}

	retry := Entry{
		ClientID:     "c1",
		Flow:         "f",
		Outcome:      OutcomeFailed,
		ErrorCode:    -32000,
		ErrorMessage: "should not be stored",
	}
	stored, created, err := s.Record(ctx, retry)
	if err != nil {
		t.Fatalf("second Record() failed: %v", err)
	}
	if created {
		t.Error("created = true, want false for repeated client id")
	}
	if stored.Outcome != OutcomeCompleted {
		t.Errorf("Outcome = %q, want first outcome %q", stored.Outcome, OutcomeCompleted)
	}
	if stored.Starts != 2 {
		t.Errorf("Starts = %d, want 2", stored.Starts)
	}

	entries, err := s.Entries(ctx, "")
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Entries() returned %d, want 1", len(entries))
	}
}

func TestRecord_Validation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		e    Entry
	}{
		{"missing client id", Entry{Flow: "f", Outcome: OutcomeCompleted}},
		{"bad outcome", Entry{ClientID: "c", Flow: "f", Outcome: "running"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := s.Record(ctx, tt.e); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRecord_FailedOutcome(t *testing.T) {
	s := createTestStore(t)

	stored, _, err := s.Record(context.Background(), Entry{
		ClientID:     "c1",
		Flow:         "f",
		Outcome:      OutcomeFailed,
		ErrorCode:    -32000,
		ErrorMessage: "insufficient balance",
	})
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if stored.Result != nil {
		t.Errorf("Result = %s, want nil", stored.Result)
	}
	if stored.ErrorCode != -32000 || stored.ErrorMessage != "insufficient balance" {
		t.Errorf("error = %d %q", stored.ErrorCode, stored.ErrorMessage)
	}
	if len(stored.Args) != 0 || stored.Args == nil {
		t.Errorf("Args = %#v, want empty array", stored.Args)
	}
}

func TestLookup(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	got, err := s.Lookup(ctx, "missing")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if got != nil {
		t.Errorf("Lookup(missing) = %v, want nil", got)
	}

	if _, _, err := s.Record(ctx, createTestEntry("c1", "f", ir.Int(50))); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	got, err = s.Lookup(ctx, "c1")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if got == nil || got.Flow != "f" || got.Args[0] != ir.Int(50) {
		t.Errorf("Lookup(c1) = %+v", got)
	}
}

func TestEntries_FilterAndOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, e := range []Entry{
		createTestEntry("z", "flow.A"),
		createTestEntry("a", "flow.B"),
		createTestEntry("m", "flow.A"),
	} {
		if _, _, err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record(%q) failed: %v", e.ClientID, err)
		}
	}

	entries, err := s.Entries(ctx, "flow.A")
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Entries(flow.A) returned %d, want 2", len(entries))
	}
	if entries[0].ClientID != "z" || entries[1].ClientID != "m" {
		t.Errorf("order = %s, %s; want journal order z, m", entries[0].ClientID, entries[1].ClientID)
	}

	all, err := s.Entries(ctx, "")
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	for i, e := range all {
		if e.Seq != int64(i+1) {
			t.Errorf("entries[%d].Seq = %d, want %d", i, e.Seq, i+1)
		}
	}
}

func TestRecord_LargeIntegersExact(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	big := ir.Int(1<<53 + 1)
	if _, _, err := s.Record(ctx, createTestEntry("c1", "f", big)); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	got, err := s.Lookup(ctx, "c1")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if got.Args[0] != big {
		t.Errorf("Args[0] = %v, want %v", got.Args[0], big)
	}
}
