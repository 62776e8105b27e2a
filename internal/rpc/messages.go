// Package rpc is a thin JSON-RPC 2.0 client for a ledger node, carried over
// a websocket.
//
// The node exposes three methods: startFlow, wellKnownPartyFromX500Name and
// notaryIdentities. A call blocks until the node answers, the connection
// fails, or the context ends. Failures the node reports are
// *InvocationError; failures of the connection itself are *TransportError.
package rpc

import (
	"encoding/json"

	"github.com/roach88/ledgerload/internal/ir"
)

// Version is the JSON-RPC protocol version sent on every message.
const Version = "2.0"

// Method names.
const (
	MethodStartFlow        = "startFlow"
	MethodWellKnownParty   = "wellKnownPartyFromX500Name"
	MethodNotaryIdentities = "notaryIdentities"
)

// Error codes carried by remote errors.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
	CodeFlowFailed     = -32000
)

// Request is a JSON-RPC request frame.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC response frame. Exactly one of Result and Error is
// set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// ErrorObject is the error member of a response.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StartFlowParams are the parameters of startFlow.
type StartFlowParams struct {
	Flow     string   `json:"flow"`
	ClientID string   `json:"clientId"`
	Args     ir.Array `json:"args"`
}

// FlowResponse is the result of startFlow. Metrics holds timings the node
// measured itself, keyed by name.
type FlowResponse struct {
	ClientID string           `json:"clientId"`
	Result   json.RawMessage  `json:"result,omitempty"`
	Metrics  map[string]int64 `json:"metrics,omitempty"`
}

// PartyParams are the parameters of wellKnownPartyFromX500Name.
type PartyParams struct {
	Name string `json:"name"`
}
