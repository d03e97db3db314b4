// Package snapshot repurposes the teacher's snapshot manager
// (internal/store/snapshot.go in ppriyankuu-godkv) as a debug artifact
// rather than a recovery source.
//
// The teacher writes a snapshot so that WAL replay on restart has less to
// redo. This repo has no WAL-based recovery (durable storage is an
// explicit Non-goal — see internal/auditlog), so a snapshot here is purely
// a point-in-time dump of a node's (Clock, Store, Buffer) tuple for an
// operator or test to inspect via GET /debug/snapshot. The atomic
// tmp-then-rename write is kept because it's still the right way to write
// a file two readers might race with, not because anything replays it.
package snapshot

import (
	"encoding/json"
	"os"
	"time"

	"github.com/ppriyankuu/causalkv/internal/clock"
)

// State is the shape of a single debug snapshot.
type State struct {
	Node       string            `json:"node"`
	Clock      clock.VectorClock `json:"clock"`
	Store      map[string]any    `json:"store"`
	Buffered   int               `json:"buffered"`
	CapturedAt time.Time         `json:"captured_at"`
}

// Save writes state to path atomically (write to a temp file, then
// rename). A crash mid-write leaves the previous snapshot, if any, intact.
func Save(path string, state State) error {
	state.CapturedAt = state.CapturedAt.UTC()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(state); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads back a previously Saved snapshot. Provided for operators and
// tests to verify what was written — never called during node startup.
func Load(path string) (State, error) {
	var state State
	data, err := os.ReadFile(path)
	if err != nil {
		return state, err
	}
	err = json.Unmarshal(data, &state)
	return state, err
}
