// Package node implements the per-node causal replication engine: the
// ingress handler (spec.md §4.4), the replicator (§4.5), and the buffer
// watcher (§4.6), all built around a single reentrant-in-spirit mutex
// guarding the (Clock, Store, Buffer) tuple as one atomic unit (§5).
//
// Go has no reentrant mutex, so the locking here follows the pattern
// spec.md's design notes call out as the alternative: public methods
// acquire the lock exactly once and delegate to unexported "Locked"
// helpers that assume it is already held. Outbound HTTP replication is
// dispatched from its own goroutine, outside the lock, so a slow peer
// never blocks anyone else — this is the same shape as the teacher's
// cluster.Node/Replicator split, generalized from quorum fan-out to full
// fan-out.
package node

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ppriyankuu/causalkv/internal/auditlog"
	"github.com/ppriyankuu/causalkv/internal/clock"
	"github.com/ppriyankuu/causalkv/internal/metrics"
	"github.com/ppriyankuu/causalkv/internal/replication"
	"github.com/ppriyankuu/causalkv/internal/store"
)

// ErrBadInput is returned for malformed write requests: empty keys.
var ErrBadInput = errors.New("bad input")

// Config carries what a Node needs at construction time.
type Config struct {
	// SelfID is this node's peer identifier. Must be a member of Peers.
	SelfID string
	// Peers is the full, fixed set of peer identifiers, self included.
	// Resolved as hostnames on PeerPort for inter-node HTTP calls.
	Peers []string
	// PeerPort is the port every peer's /receive endpoint listens on.
	PeerPort int
	// SweepInterval is how often the buffer watcher wakes. Defaults to 1s.
	SweepInterval time.Duration
	// ReplicationTimeout bounds a single outbound replication send.
	// Defaults to 3s.
	ReplicationTimeout time.Duration
}

// Node owns a node's entire replication state and is safe for concurrent
// use from many HTTP handler goroutines plus the background buffer
// watcher.
type Node struct {
	cfg Config

	mu     sync.Mutex
	clock  clock.VectorClock
	store  *store.Store
	buffer *replication.Buffer

	// keyTimestamps tracks the clock an applied write carried, per key —
	// diagnostic-only side state, not part of Store, so it never
	// influences what a read returns. Its sole purpose is feeding
	// observeKeyTimestampLocked, which is how ConcurrentWrites gets wired up.
	keyTimestamps map[string]clock.VectorClock

	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
	audit      *auditlog.Log

	stopWatcher chan struct{}
	watcherDone chan struct{}
}

// New constructs a Node and starts its background buffer watcher.
func New(cfg Config, logger *zap.Logger, m *metrics.Metrics, audit *auditlog.Log) *Node {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Second
	}
	if cfg.ReplicationTimeout <= 0 {
		cfg.ReplicationTimeout = 3 * time.Second
	}

	n := &Node{
		cfg:           cfg,
		clock:         clock.New(cfg.Peers),
		store:         store.New(),
		buffer:        replication.NewBuffer(),
		keyTimestamps: make(map[string]clock.VectorClock),
		httpClient:    &http.Client{Timeout: cfg.ReplicationTimeout},
		logger:        logger,
		metrics:       m,
		audit:         audit,
		stopWatcher:   make(chan struct{}),
		watcherDone:   make(chan struct{}),
	}

	m.ClusterSize.Set(float64(len(cfg.Peers)))

	go n.runBufferWatcher()
	return n
}

// Stop halts the background buffer watcher. Shutdown semantics beyond
// that are unspecified (accepted non-goal, spec.md §5).
func (n *Node) Stop() {
	close(n.stopWatcher)
	<-n.watcherDone
}

// SelfID returns this node's peer identifier.
func (n *Node) SelfID() string { return n.cfg.SelfID }

// ClockSnapshot returns a copy of the current clock, safe to hand to a
// caller outside the lock.
func (n *Node) ClockSnapshot() clock.VectorClock {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clock.Copy()
}

// BufferDepth reports how many messages are currently parked.
func (n *Node) BufferDepth() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.buffer.Len()
}

// StoreSnapshot returns an independent copy of the current key→value map.
func (n *Node) StoreSnapshot() map[string]any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.Snapshot()
}

// MetricsRegistry exposes this node's Prometheus registry for mounting a
// scrape endpoint.
func (n *Node) MetricsRegistry() *prometheus.Registry {
	return n.metrics.Registry
}

// AuditTail returns every entry recorded in this node's audit trail, for
// operator/debug inspection via GET /debug/audit.
func (n *Node) AuditTail() ([]auditlog.Entry, error) {
	return n.audit.Tail()
}
