package gateway

import (
	"sync"
	"time"
)

// Event is one planner progress record for a run.
type Event struct {
	RunID     string         `json:"run_id"`
	Stage     string         `json:"stage"`
	Fields    map[string]any `json:"fields,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Retention bounds on buffered history: a finished run's buffer is dropped
// doneRetention after its terminal event, and no single run buffers more
// than maxRunEvents entries.
const (
	doneStage     = "done"
	doneRetention = 10 * time.Minute
	maxRunEvents  = 256
)

// Hub buffers per-run events and fans them out to live subscribers. It
// implements planner.EventSink. Slow subscribers drop events rather than
// blocking the planning run.
type Hub struct {
	mu     sync.Mutex
	events map[string][]Event
	subs   map[string][]chan Event

	// retention is how long a finished run's history stays readable.
	retention time.Duration
}

func NewHub() *Hub {
	return &Hub{
		events:    map[string][]Event{},
		subs:      map[string][]chan Event{},
		retention: doneRetention,
	}
}

// Append records an event and pushes it to subscribers of the run.
func (h *Hub) Append(runID, stage string, fields map[string]any) {
	if h == nil || runID == "" {
		return
	}
	ev := Event{RunID: runID, Stage: stage, Fields: fields, Timestamp: time.Now()}
	h.mu.Lock()
	buf := append(h.events[runID], ev)
	if len(buf) > maxRunEvents {
		buf = buf[len(buf)-maxRunEvents:]
	}
	h.events[runID] = buf
	subs := h.subs[runID]
	h.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
	if stage == doneStage {
		time.AfterFunc(h.retention, func() { h.drop(runID) })
	}
}

func (h *Hub) drop(runID string) {
	h.mu.Lock()
	delete(h.events, runID)
	h.mu.Unlock()
}

// Subscribe returns buffered history plus a live channel. Call the returned
// cancel function when done.
func (h *Hub) Subscribe(runID string) ([]Event, <-chan Event, func()) {
	ch := make(chan Event, 16)
	h.mu.Lock()
	history := append([]Event(nil), h.events[runID]...)
	h.subs[runID] = append(h.subs[runID], ch)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		subs := h.subs[runID]
		for i, c := range subs {
			if c == ch {
				h.subs[runID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		h.mu.Unlock()
	}
	return history, ch, cancel
}

// Events returns a copy of the recorded events for a run.
func (h *Hub) Events(runID string) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.events[runID]...)
}
