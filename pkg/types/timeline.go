package types

import (
	"time"

	"github.com/google/uuid"
)

// TimelineEntry is one immutable audit record on a rental.
type TimelineEntry struct {
	Event     string         `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	Actor     uuid.UUID      `json:"actor"`
	Details   map[string]any `json:"details,omitempty"`
}

// Timeline is the append-only ordered event log stored on a rental.
// History is only ever reconstructed from this log; entries are never
// edited or removed.
type Timeline []TimelineEntry

// Append returns the timeline with a new entry added. The receiver is not
// mutated so callers can safely reuse snapshots.
func (t Timeline) Append(event string, actor uuid.UUID, at time.Time, details map[string]any) Timeline {
	next := make(Timeline, 0, len(t)+1)
	next = append(next, t...)
	next = append(next, TimelineEntry{
		Event:     event,
		Timestamp: at,
		Actor:     actor,
		Details:   details,
	})
	return next
}
