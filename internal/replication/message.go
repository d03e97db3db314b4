// Package replication holds the wire type for replica messages, the
// causal delivery predicate, and the re-delivery buffer for messages whose
// causal prerequisites have not yet arrived.
package replication

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ppriyankuu/causalkv/internal/clock"
)

// Message is a replica message as carried between nodes: the write a
// sender applied locally, along with the vector clock it observed at the
// moment of application.
//
// TraceID is a google/uuid value attached purely for log correlation; it
// plays no role in the delivery predicate or in message identity. Identity
// is the triple (Sender, Timestamp[Sender], Key), per spec.md §3 — the
// buffer tolerates duplicates of that triple rather than deduplicating on
// TraceID.
type Message struct {
	Key       string            `json:"key"`
	Value     any               `json:"value"`
	Sender    string            `json:"sender"`
	Timestamp clock.VectorClock `json:"timestamp"`
	TraceID   string            `json:"trace_id,omitempty"`
}

// NewMessage builds a Message for a write just applied locally at sender,
// stamping it with a fresh trace id.
func NewMessage(key string, value any, sender string, timestamp clock.VectorClock) Message {
	return Message{
		Key:       key,
		Value:     value,
		Sender:    sender,
		Timestamp: timestamp,
		TraceID:   uuid.NewString(),
	}
}

// Identity returns the tuple that uniquely identifies this message for
// causal-delivery purposes.
func (m Message) Identity() string {
	return fmt.Sprintf("%s@%d/%s", m.Sender, m.Timestamp[m.Sender], m.Key)
}
