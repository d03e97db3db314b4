package node

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ppriyankuu/causalkv/internal/replication"
)

// dispatchToAllPeers fans msg out to every peer other than self, one
// goroutine each, and forgets about the result. There is no sender-side
// retry: a peer that misses a message never receives it, and later
// messages from this node that depend on it stay in that peer's buffer
// (spec.md §4.5 — a deliberate departure from the teacher's
// exponential-backoff replicator, see DESIGN.md).
func (n *Node) dispatchToAllPeers(msg replication.Message) {
	for _, peer := range n.cfg.Peers {
		if peer == n.cfg.SelfID {
			continue
		}
		go n.sendTo(peer, msg)
	}
}

// sendTo POSTs msg to a single peer's /receive endpoint. Failures are
// logged and counted, never retried or surfaced to the original writer —
// the write already succeeded locally before replication was attempted.
func (n *Node) sendTo(peer string, msg replication.Message) {
	start := time.Now()
	defer func() {
		n.metrics.ReplicationLatency.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(msg)
	if err != nil {
		n.logger.Error("failed to marshal replica message", zap.Error(err))
		n.metrics.ReplicationFailed.Inc()
		return
	}

	url := "http://" + peer + portSuffix(n.cfg.PeerPort) + "/receive"

	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.ReplicationTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("failed to build replication request", zap.String("peer", peer), zap.Error(err))
		n.metrics.ReplicationFailed.Inc()
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("replication send failed, not retrying",
			zap.String("peer", peer),
			zap.String("key", msg.Key),
			zap.Error(err),
		)
		n.metrics.ReplicationFailed.Inc()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warn("replication send rejected by peer",
			zap.String("peer", peer),
			zap.Int("status", resp.StatusCode),
		)
		n.metrics.ReplicationFailed.Inc()
	}
}

func portSuffix(port int) string {
	if port == 0 {
		return ""
	}
	return ":" + strconv.Itoa(port)
}
