// Package ir provides the typed values carried as flow arguments.
//
// Flow arguments cross the RPC boundary as JSON. Plain values map onto
// String, Int, Bool, Array and Object. Ledger types (amounts, opaque
// reference bytes, parties) are Objects tagged with an "@type" key so the
// receiving node can check an argument list against a flow signature.
//
// This package imports nothing internal. Every other internal package may
// import it.
//
// Key design constraints:
//   - NO float types anywhere - amounts are int64 quantities
//   - Object keys are emitted in RFC 8785 order so encodings are stable
//   - Canonical JSON (MarshalCanonical) is the only input to ClientID
package ir
