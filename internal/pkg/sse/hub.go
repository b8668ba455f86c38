package sse

import (
	"sync"
)

// Event represents an SSE event sent to the subscribers of one pay run.
type Event struct {
	RunID string
	Event string
	Data  interface{}
}

// Hub manages pay-run progress subscribers and event broadcasting. Streams
// are keyed by the client-chosen run id, so several browser tabs can follow
// the same run.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber for a run and returns the event channel and cleanup function
func (h *Hub) Subscribe(runID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[runID] == nil {
		h.subscribers[runID] = make(map[chan Event]struct{})
	}
	h.subscribers[runID][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[runID], ch)
		close(ch)
		if len(h.subscribers[runID]) == 0 {
			delete(h.subscribers, runID)
		}
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of a run
func (h *Hub) Publish(runID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[runID]; ok {
		for ch := range subs {
			select {
			case ch <- event:
			default:
				// Skip if channel is full (non-blocking to prevent deadlock)
			}
		}
	}
}

// Progress publishes a human-readable stage message for a run.
func (h *Hub) Progress(runID string, message string) {
	h.Publish(runID, Event{
		RunID: runID,
		Event: "progress",
		Data:  map[string]string{"message": message},
	})
}

// SubscriberCount returns the number of active subscribers for a run
func (h *Hub) SubscriberCount(runID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[runID]; ok {
		return len(subs)
	}
	return 0
}

// TotalSubscribers returns the total number of active subscribers across all runs
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
