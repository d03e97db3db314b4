// Package api wires the node's operations onto Gin HTTP routes per
// spec.md §6: health, write, receive, read, plus a Prometheus scrape
// endpoint and a debug snapshot, none of which existed on the spec's
// distilled surface but which the teacher always exposes alongside its
// KV routes.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppriyankuu/causalkv/internal/clock"
	"github.com/ppriyankuu/causalkv/internal/node"
	"github.com/ppriyankuu/causalkv/internal/replication"
	"github.com/ppriyankuu/causalkv/internal/snapshot"
)

// Handler holds the single Node a server process drives HTTP traffic
// into. There is exactly one per process — the spec's peer set is fixed
// at startup, so unlike the teacher's Handler there is no membership or
// replicator to inject separately.
type Handler struct {
	node        *node.Node
	snapshotDir string
}

// NewHandler creates a Handler. snapshotDir may be empty, in which case
// GET /debug/snapshot still returns the state but writes nothing to disk.
func NewHandler(n *node.Node, snapshotDir string) *Handler {
	return &Handler{node: n, snapshotDir: snapshotDir}
}

// Register mounts every route on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.POST("/write", h.Write)
	r.POST("/receive", h.Receive)
	r.GET("/read", h.Read)
	r.GET("/debug/snapshot", h.DebugSnapshot)
	r.GET("/debug/audit", h.DebugAudit)
	r.GET("/metrics", h.metricsHandler())
}

func (h *Handler) metricsHandler() gin.HandlerFunc {
	inner := promhttp.HandlerFor(h.node.MetricsRegistry(), promhttp.HandlerOpts{})
	return gin.WrapH(inner)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"node":      h.node.SelfID(),
		"timestamp": h.node.ClockSnapshot(),
	})
}

type writeRequest struct {
	Key     string            `json:"key" binding:"required"`
	Value   any               `json:"value"`
	Context clock.VectorClock `json:"context"`
}

// Write handles POST /write: spec.md §6/§7 bad-input kind — a malformed
// body or missing key is the only error this handler ever surfaces to the
// caller. Everything downstream (replication) is best-effort and never
// fails the response.
func (h *Handler) Write(c *gin.Context) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.node.LocalWrite(req.Key, req.Value, req.Context)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"timestamp": result.Timestamp,
	})
}

type receiveRequest struct {
	Key       string            `json:"key" binding:"required"`
	Value     any               `json:"value"`
	Sender    string            `json:"sender" binding:"required"`
	Timestamp clock.VectorClock `json:"timestamp" binding:"required"`
}

// Receive handles POST /receive. It always returns 200 once the body
// parses — acknowledging receipt, never delivery (spec.md §6).
func (h *Handler) Receive(c *gin.Context) {
	var req receiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.node.RemoteReceive(replication.Message{
		Key:       req.Key,
		Value:     req.Value,
		Sender:    req.Sender,
		Timestamp: req.Timestamp,
	})

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// Read handles GET /read?key=K.
func (h *Handler) Read(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing key query parameter"})
		return
	}

	value, ts := h.node.Read(key)
	c.JSON(http.StatusOK, gin.H{
		"value":     value,
		"timestamp": ts,
	})
}

// DebugSnapshot handles GET /debug/snapshot: an operator-facing,
// point-in-time dump of this node's state, written to snapshotDir if
// configured. Never consulted at startup — see internal/snapshot.
func (h *Handler) DebugSnapshot(c *gin.Context) {
	state := snapshot.State{
		Node:       h.node.SelfID(),
		Clock:      h.node.ClockSnapshot(),
		Store:      h.node.StoreSnapshot(),
		Buffered:   h.node.BufferDepth(),
		CapturedAt: time.Now(),
	}

	if h.snapshotDir != "" {
		path := h.snapshotDir + "/" + h.node.SelfID() + ".snapshot.json"
		if err := snapshot.Save(path, state); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, state)
}

// DebugAudit handles GET /debug/audit: returns every transition recorded
// in this node's audit trail (internal/auditlog), oldest first. Read-only
// inspection — nothing here is ever replayed into node state.
func (h *Handler) DebugAudit(c *gin.Context) {
	entries, err := h.node.AuditTail()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
