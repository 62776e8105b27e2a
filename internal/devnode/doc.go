// Package devnode is a stand-in ledger node for local load runs.
//
// It speaks the same JSON-RPC over websocket protocol as internal/rpc and
// answers identity queries from a network map held in the store. Starting
// a flow checks the arguments against the flow catalog, waits for the
// configured latency and replies with a canned result. Nothing is
// validated beyond the argument signature: there is no consensus and no
// contract execution.
//
// Flows are journaled by client id. Starting a flow a second time with the
// same client id returns the journaled outcome without running it again.
//
// Routes:
//
//	GET /rpc      websocket upgrade, JSON-RPC 2.0 frames
//	GET /journal  journaled flow starts as JSON, ?flow= filters
//	GET /metrics  Prometheus metrics
//	GET /healthz  liveness
package devnode
