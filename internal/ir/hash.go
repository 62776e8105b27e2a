package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainClientID separates client id hashes from any other use of the
// same canonical bytes. The version suffix allows a future algorithm change.
const DomainClientID = "ledgerload/client-id/v1"

// hashWithDomain computes SHA256(domain || 0x00 || data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ClientID computes the content-addressed client id of one flow start.
//
// The id is stable for the same run, flow, arguments and sequence number,
// which lets a node deduplicate a retried start of the same iteration.
func ClientID(runID, flow string, args Array, seq int64) (string, error) {
	obj := Object{
		"run_id": String(runID),
		"flow":   String(flow),
		"args":   args,
		"seq":    Int(seq),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("client id: %w", err)
	}
	return hashWithDomain(DomainClientID, canonical), nil
}

// MustClientID is like ClientID but panics on error.
// Use only in tests or when arguments are known to be valid.
func MustClientID(runID, flow string, args Array, seq int64) string {
	id, err := ClientID(runID, flow, args, seq)
	if err != nil {
		panic(err)
	}
	return id
}
