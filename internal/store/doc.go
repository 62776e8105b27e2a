// Package store provides the SQLite-backed state of the development node.
//
// Two tables:
//   - parties: the network map (well-known parties and notaries)
//   - flow_journal: one row per client id with the recorded outcome
//
// # Ordering
//
// Rows carry a seq column assigned at insert. Listings order by seq ASC,
// then by key with COLLATE BINARY, never by wall-clock time.
//
// # Idempotency
//
// A second start with a known client id does not create a row; it bumps
// the starts counter and returns the recorded entry.
//
// # Opening
//
// Connection settings travel in the DSN (WAL journal, synchronous=NORMAL,
// 5s busy timeout). Open migrates by user_version and, given WithNetwork,
// registers the node's identities in one transaction.
//
// Arguments are stored as RFC 8785 canonical JSON (see internal/ir).
package store
