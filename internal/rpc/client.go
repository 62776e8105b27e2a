package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v3"
	"github.com/gorilla/websocket"

	"github.com/roach88/ledgerload/internal/flow"
	"github.com/roach88/ledgerload/internal/ir"
)

// Client is a connection to one node. It is safe for concurrent use: writes
// are serialised and a single reader goroutine routes responses to callers
// by request id.
type Client struct {
	conn        *websocket.Conn
	logger      *slog.Logger
	callTimeout time.Duration

	nextID  atomic.Uint64
	writeMu sync.Mutex

	mu       sync.Mutex
	pending  map[uint64]chan *Response
	closeErr error
	done     chan struct{}

	closeOnce sync.Once
}

type options struct {
	username    string
	password    string
	callTimeout time.Duration
	logger      *slog.Logger
	retry       []func(*backoff.ExponentialBackOff)
	dialer      *websocket.Dialer
}

// Option configures Dial.
type Option func(*options)

// WithCredentials sends HTTP basic credentials on the websocket handshake.
func WithCredentials(username, password string) Option {
	return func(o *options) {
		o.username = username
		o.password = password
	}
}

// WithCallTimeout bounds every call. Zero, the default, means calls wait
// until the node answers or the connection fails. A call that runs past the
// bound fails with a TransportError; a call whose own context ends returns
// the context's error.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) {
		o.callTimeout = d
	}
}

// WithLogger sets the logger for connection events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRetry adjusts the backoff used for the initial connection.
func WithRetry(fn func(*backoff.ExponentialBackOff)) Option {
	return func(o *options) {
		o.retry = append(o.retry, fn)
	}
}

// Dial connects to the node at address (a ws:// or wss:// URL). Failed
// handshakes are retried with exponential backoff until the backoff gives
// up or ctx ends; a rejected login is not retried.
func Dial(ctx context.Context, address string, opts ...Option) (*Client, error) {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		dialer: websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(&o)
	}

	header := http.Header{}
	if o.username != "" {
		token := base64.StdEncoding.EncodeToString([]byte(o.username + ":" + o.password))
		header.Set("Authorization", "Basic "+token)
	}

	b := &backoff.ExponentialBackOff{
		InitialInterval:     100 * time.Millisecond,
		RandomizationFactor: 0.1,
		Multiplier:          2,
		MaxInterval:         2 * time.Second,
		MaxElapsedTime:      10 * time.Second,
		Clock:               backoff.SystemClock,
	}
	for _, fn := range o.retry {
		fn(b)
	}
	b.Reset()

	var conn *websocket.Conn
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		c, resp, err := o.dialer.DialContext(ctx, address, header)
		if err != nil {
			if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
				return backoff.Permanent(fmt.Errorf("%w: %s", err, resp.Status))
			}
			o.logger.Debug("dial failed", "address", address, "attempt", attempt, "error", err)
			return err
		}
		conn = c
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, &TransportError{Op: "dial " + address, Err: err}
	}

	c := &Client{
		conn:        conn,
		logger:      o.logger,
		callTimeout: o.callTimeout,
		pending:     make(map[uint64]chan *Response),
		done:        make(chan struct{}),
	}
	go c.readLoop()

	o.logger.Debug("connected", "address", address, "attempts", attempt)
	return c, nil
}

// StartFlow starts a flow and waits for its result. A flow the node rejects
// is an *InvocationError naming the flow.
func (c *Client) StartFlow(ctx context.Context, inv flow.Invocation) (*FlowResponse, error) {
	params := StartFlowParams{Flow: inv.Flow, ClientID: inv.ClientID, Args: inv.Args}
	if params.Args == nil {
		params.Args = ir.Array{}
	}

	var resp FlowResponse
	if err := c.call(ctx, MethodStartFlow, params, &resp); err != nil {
		var ie *InvocationError
		if errors.As(err, &ie) {
			ie.Flow = inv.Flow
		}
		return nil, err
	}
	return &resp, nil
}

// WellKnownParty returns the party with the given X.500 name, or nil if the
// node does not know it.
func (c *Client) WellKnownParty(ctx context.Context, name string) (*ir.Party, error) {
	var party *ir.Party
	if err := c.call(ctx, MethodWellKnownParty, PartyParams{Name: name}, &party); err != nil {
		return nil, err
	}
	return party, nil
}

// NotaryIdentities lists the notaries on the network.
func (c *Client) NotaryIdentities(ctx context.Context) ([]ir.Party, error) {
	var notaries []ir.Party
	if err := c.call(ctx, MethodNotaryIdentities, nil, &notaries); err != nil {
		return nil, err
	}
	return notaries, nil
}

// Close closes the connection. Pending and later calls fail with a
// TransportError wrapping ErrClosed. Close is idempotent.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.fail(&TransportError{Op: "close", Err: ErrClosed})

		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()

		err = c.conn.Close()
	})
	return err
}

func (c *Client) call(parent context.Context, method string, params, result any) error {
	ctx := parent
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	req := Request{JSONRPC: Version, ID: c.nextID.Add(1), Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode %s params: %w", method, err)
		}
		req.Params = raw
	}

	ch := make(chan *Response, 1)
	c.mu.Lock()
	if c.closeErr != nil {
		err := c.closeErr
		c.mu.Unlock()
		return err
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(req.ID)
		terr := &TransportError{Op: "write " + method, Err: err}
		c.fail(terr)
		return terr
	}

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return &InvocationError{Method: method, Code: resp.Error.Code, Message: resp.Error.Message}
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return &InvocationError{Method: method, Code: CodeParseError, Message: "decode result: " + err.Error()}
			}
		}
		return nil
	case <-c.done:
		c.forget(req.ID)
		return c.err()
	case <-ctx.Done():
		c.forget(req.ID)
		if err := parent.Err(); err != nil {
			return fmt.Errorf("%s: %w", method, err)
		}
		return &TransportError{Op: method, Err: ctx.Err()}
	}
}

func (c *Client) readLoop() {
	for {
		var resp Response
		if err := c.conn.ReadJSON(&resp); err != nil {
			c.fail(&TransportError{Op: "read", Err: err})
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()

		if !ok {
			c.logger.Debug("dropping response with no caller", "id", resp.ID)
			continue
		}
		ch <- &resp
	}
}

// fail records the first terminal error and releases every waiting caller.
func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeErr != nil {
		return
	}
	c.closeErr = err
	c.pending = make(map[uint64]chan *Response)
	close(c.done)
}

func (c *Client) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeErr
}
