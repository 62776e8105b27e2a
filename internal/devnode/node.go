package devnode

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/ledgerload/internal/identity"
	"github.com/roach88/ledgerload/internal/ir"
	"github.com/roach88/ledgerload/internal/store"
)

// Config controls the node's simulated behaviour.
type Config struct {
	// Latency is how long each flow "runs" before the node replies.
	Latency time.Duration
	// FailEvery makes every Nth new flow fail remotely. Zero disables.
	FailEvery int
	// Username and Password, when set, are required as HTTP basic
	// credentials on the websocket upgrade.
	Username string
	Password string
}

// Node is a development ledger node.
type Node struct {
	store    *store.Store
	cfg      Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics
	upgrader websocket.Upgrader
	runs     atomic.Int64
}

// Option configures a Node.
type Option func(*Node)

// WithLogger sets the node's logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Node) {
		n.logger = l
	}
}

// New creates a node over st. The store is owned by the caller.
func New(st *store.Store, cfg Config, opts ...Option) *Node {
	reg := prometheus.NewRegistry()
	n := &Node{
		store:    st,
		cfg:      cfg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		registry: reg,
		metrics:  newMetrics(reg),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Network canonicalises the seed names and derives each party's owning key.
// The result is registered with store.WithNetwork when the store is opened.
func Network(notaries, parties []string) (store.Network, error) {
	build := func(names []string) ([]ir.Party, error) {
		out := make([]ir.Party, 0, len(names))
		for _, name := range names {
			canonical, err := identity.Canonical(name)
			if err != nil {
				return nil, fmt.Errorf("seed %q: %w", name, err)
			}
			out = append(out, ir.Party{Name: canonical, OwningKey: OwningKey(canonical)})
		}
		return out, nil
	}

	var (
		n   store.Network
		err error
	)
	if n.Notaries, err = build(notaries); err != nil {
		return store.Network{}, err
	}
	if n.Parties, err = build(parties); err != nil {
		return store.Network{}, err
	}
	return n, nil
}

// OwningKey derives the key a seeded party is registered with.
func OwningKey(canonicalName string) string {
	return "key:" + uuid.NewSHA1(uuid.NameSpaceX500, []byte(canonicalName)).String()
}

// Handler returns the node's HTTP routes.
func (n *Node) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/rpc", n.serveRPC).Methods("GET")
	router.HandleFunc("/journal", n.serveJournal).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(n.registry, promhttp.HandlerOpts{})).Methods("GET")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if err := n.store.Ping(r.Context()); err != nil {
			n.logger.Warn("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, "store unavailable\n")
			return
		}
		_, _ = io.WriteString(w, "ok\n")
	}).Methods("GET")
	return router
}

// ListenAndServe serves the node on addr until ctx ends.
func (n *Node) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           n.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.ListenAndServe()
	}()
	n.logger.Info("devnode listening", "addr", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("devnode: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("devnode shutdown: %w", err)
		}
		return nil
	}
}

func (n *Node) authorized(r *http.Request) bool {
	if n.cfg.Username == "" && n.cfg.Password == "" {
		return true
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(n.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(n.cfg.Password)) == 1
	return userOK && passOK
}
