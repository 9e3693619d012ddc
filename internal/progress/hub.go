package progress

import (
	"sync"

	"jamdash/internal/models"
)

// Event is a point-in-time snapshot of a task, pushed to subscribers.
// This is the exact shape sent over the progress stream.
type Event struct {
	Progress float64 `json:"progress"` // completion fraction in [0, 1]
	Status   string  `json:"status"`
	Total    int     `json:"total"`
	Message  string  `json:"message"`
}

// Terminal reports whether this event ends the stream.
func (e Event) Terminal() bool {
	return e.Status == models.TaskStatusCompleted || e.Status == models.TaskStatusFailed
}

// subscriberBuffer bounds how far a subscriber may lag behind the publisher.
// A subscriber that overflows it is dropped rather than allowed to block the
// executor; the client recovers via task_in_progress + resubscribe.
const subscriberBuffer = 64

// Subscription is one attached consumer of a task's event stream. Receive
// from C until it is closed.
type Subscription struct {
	C      <-chan Event
	ch     chan Event
	taskID string
}

// Hub fans progress events out to any number of subscribers per task.
// It is purely a distribution channel: dropping a subscriber never affects
// the publisher or other subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
	last map[string]Event // latest event per task, for attach snapshots
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscription]struct{}),
		last: make(map[string]Event),
	}
}

// Attach subscribes to a task's event stream. The subscriber immediately
// receives the latest known event as a snapshot, then every later event in
// publish order. If the task is already terminal the snapshot is the only
// event and the channel is closed right away, so attaching late never hangs.
func (h *Hub) Attach(taskID string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscription{
		ch:     make(chan Event, subscriberBuffer),
		taskID: taskID,
	}
	sub.C = sub.ch

	if last, ok := h.last[taskID]; ok {
		sub.ch <- last
		if last.Terminal() {
			close(sub.ch)
			return sub
		}
	}

	if h.subs[taskID] == nil {
		h.subs[taskID] = make(map[*Subscription]struct{})
	}
	h.subs[taskID][sub] = struct{}{}
	return sub
}

// Publish sends an event to every subscriber of the task, in order. After a
// terminal event all subscriptions for the task are closed.
func (h *Hub) Publish(taskID string, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last[taskID] = ev

	for sub := range h.subs[taskID] {
		select {
		case sub.ch <- ev:
		default:
			// Slow consumer: drop it instead of stalling the task.
			delete(h.subs[taskID], sub)
			close(sub.ch)
		}
	}

	if ev.Terminal() {
		for sub := range h.subs[taskID] {
			close(sub.ch)
		}
		delete(h.subs, taskID)
	}
}

// Detach removes a subscription and closes its channel. Safe to call for
// subscriptions the hub has already closed.
func (h *Hub) Detach(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.subs[sub.taskID]; ok {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			close(sub.ch)
		}
	}
}

// Snapshot returns the latest event published for a task, if any.
func (h *Hub) Snapshot(taskID string) (Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ev, ok := h.last[taskID]
	return ev, ok
}

// Forget drops all retained state for a task, closing any remaining
// subscriptions. Used when terminal task records are pruned.
func (h *Hub) Forget(taskID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[taskID] {
		close(sub.ch)
	}
	delete(h.subs, taskID)
	delete(h.last, taskID)
}
