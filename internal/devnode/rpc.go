package devnode

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/roach88/ledgerload/internal/flow"
	"github.com/roach88/ledgerload/internal/identity"
	"github.com/roach88/ledgerload/internal/rpc"
	"github.com/roach88/ledgerload/internal/store"
)

// serveRPC upgrades the request and serves JSON-RPC frames until the peer
// goes away. Requests on one connection are handled concurrently.
func (n *Node) serveRPC(w http.ResponseWriter, r *http.Request) {
	if !n.authorized(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="devnode"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := n.upgrader.Upgrade(w, r, nil)
	if err != nil {
		n.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	n.metrics.connections.Inc()
	defer n.metrics.connections.Dec()

	ctx, cancel := context.WithCancel(context.Background())
	var (
		writeMu sync.Mutex
		wg      sync.WaitGroup
	)
	defer func() {
		cancel()
		wg.Wait()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				n.logger.Debug("rpc connection ended", "error", err)
			}
			return
		}

		var req rpc.Request
		if err := json.Unmarshal(data, &req); err != nil {
			n.write(conn, &writeMu, rpc.Response{
				JSONRPC: rpc.Version,
				Error:   &rpc.ErrorObject{Code: rpc.CodeParseError, Message: err.Error()},
			})
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			n.write(conn, &writeMu, n.dispatch(ctx, req))
		}()
	}
}

func (n *Node) write(conn *websocket.Conn, mu *sync.Mutex, resp rpc.Response) {
	mu.Lock()
	defer mu.Unlock()
	if err := conn.WriteJSON(resp); err != nil {
		n.logger.Debug("rpc write failed", "id", resp.ID, "error", err)
	}
}

func (n *Node) dispatch(ctx context.Context, req rpc.Request) rpc.Response {
	var (
		result any
		rpcErr *rpc.ErrorObject
	)
	switch req.Method {
	case rpc.MethodStartFlow:
		result, rpcErr = n.startFlow(ctx, req.Params)
	case rpc.MethodWellKnownParty:
		result, rpcErr = n.wellKnownParty(ctx, req.Params)
	case rpc.MethodNotaryIdentities:
		result, rpcErr = n.notaryIdentities(ctx)
	default:
		rpcErr = &rpc.ErrorObject{Code: rpc.CodeMethodNotFound, Message: "unknown method " + req.Method}
	}

	resp := rpc.Response{JSONRPC: rpc.Version, ID: req.ID, Error: rpcErr}
	if rpcErr == nil {
		raw, err := json.Marshal(result)
		if err != nil {
			resp.Error = internalError(err)
		} else {
			resp.Result = raw
		}
	}
	return resp
}

func (n *Node) startFlow(ctx context.Context, raw json.RawMessage) (any, *rpc.ErrorObject) {
	var p rpc.StartFlowParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, invalidParams(err.Error())
	}
	if p.ClientID == "" {
		return nil, invalidParams("clientId is required")
	}
	tmpl, ok := flow.Lookup(p.Flow)
	if !ok {
		return nil, &rpc.ErrorObject{Code: rpc.CodeMethodNotFound, Message: "unknown flow " + p.Flow}
	}
	if err := tmpl.Check(p.Args); err != nil {
		return nil, invalidParams(err.Error())
	}

	prior, err := n.store.Lookup(ctx, p.ClientID)
	if err != nil {
		return nil, internalError(err)
	}
	if prior != nil {
		stored, _, err := n.store.Record(ctx, *prior)
		if err != nil {
			return nil, internalError(err)
		}
		n.metrics.flowsReplayed.WithLabelValues(stored.Flow).Inc()
		n.logger.Debug("flow replayed", "client_id", p.ClientID, "starts", stored.Starts)
		return entryResponse(stored)
	}

	entry, err := n.run(ctx, p)
	if err != nil {
		return nil, internalError(err)
	}
	stored, created, err := n.store.Record(ctx, entry)
	if err != nil {
		return nil, internalError(err)
	}
	if created {
		n.metrics.flowsStarted.WithLabelValues(stored.Flow, stored.Outcome).Inc()
		n.metrics.flowDuration.WithLabelValues(stored.Flow).Observe(stored.Duration.Seconds())
	}
	return entryResponse(stored)
}

// run simulates the flow. Every FailEvery-th run fails.
func (n *Node) run(ctx context.Context, p rpc.StartFlowParams) (store.Entry, error) {
	start := time.Now()
	if n.cfg.Latency > 0 {
		timer := time.NewTimer(n.cfg.Latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return store.Entry{}, ctx.Err()
		}
	}
	seq := n.runs.Add(1)

	entry := store.Entry{
		ClientID: p.ClientID,
		Flow:     p.Flow,
		Args:     p.Args,
		Duration: time.Since(start),
	}
	if n.cfg.FailEvery > 0 && seq%int64(n.cfg.FailEvery) == 0 {
		entry.Outcome = store.OutcomeFailed
		entry.ErrorCode = rpc.CodeFlowFailed
		entry.ErrorMessage = "flow failed: simulated failure"
		n.logger.Debug("flow failed", "flow", p.Flow, "client_id", p.ClientID, "run", seq)
		return entry, nil
	}

	result, err := json.Marshal(map[string]string{
		"txId": uuid.NewSHA1(uuid.NameSpaceOID, []byte(p.ClientID)).String(),
	})
	if err != nil {
		return store.Entry{}, err
	}
	entry.Outcome = store.OutcomeCompleted
	entry.Result = result
	return entry, nil
}

func entryResponse(e store.Entry) (any, *rpc.ErrorObject) {
	if e.Outcome == store.OutcomeFailed {
		return nil, &rpc.ErrorObject{Code: e.ErrorCode, Message: e.ErrorMessage}
	}
	return rpc.FlowResponse{
		ClientID: e.ClientID,
		Result:   e.Result,
		Metrics: map[string]int64{
			"durationMicros": e.Duration.Microseconds(),
			"starts":         int64(e.Starts),
		},
	}, nil
}

func (n *Node) wellKnownParty(ctx context.Context, raw json.RawMessage) (any, *rpc.ErrorObject) {
	var p rpc.PartyParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, invalidParams(err.Error())
	}
	canonical, err := identity.Canonical(p.Name)
	if err != nil {
		return nil, invalidParams(err.Error())
	}
	party, err := n.store.Party(ctx, canonical)
	if err != nil {
		return nil, internalError(err)
	}
	return party, nil
}

func (n *Node) notaryIdentities(ctx context.Context) (any, *rpc.ErrorObject) {
	notaries, err := n.store.Notaries(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return notaries, nil
}

func invalidParams(msg string) *rpc.ErrorObject {
	return &rpc.ErrorObject{Code: rpc.CodeInvalidParams, Message: msg}
}

func internalError(err error) *rpc.ErrorObject {
	if errors.Is(err, context.Canceled) {
		return &rpc.ErrorObject{Code: rpc.CodeInternal, Message: "node shutting down"}
	}
	return &rpc.ErrorObject{Code: rpc.CodeInternal, Message: err.Error()}
}
