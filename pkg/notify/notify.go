// Package notify delivers domain events emitted after successful board
// mutations to interested parties: an external webhook, connected websocket
// clients, or test recorders.
//
// Delivery is strictly best-effort. A Notifier never returns an error and
// never blocks the mutation that produced the event; failed deliveries are
// logged and dropped, never retried.
package notify

import (
	"sync"
	"time"
)

// Event is the record delivered for every successful mutation.
type Event struct {
	Source  string    `json:"source"`
	Type    string    `json:"type"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

// EventSource identifies this process as the event origin.
const EventSource = "backend"

// NewEvent builds an event stamped with the current time.
func NewEvent(eventType string, payload any) Event {
	return Event{
		Source:  EventSource,
		Type:    eventType,
		Payload: payload,
		At:      time.Now().UTC(),
	}
}

// Notifier is the sink the repository emits events into. Implementations
// must return quickly and must never propagate delivery failures.
type Notifier interface {
	Notify(event Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(Event) {}

// Multi fans an event out to several sinks in order.
type Multi []Notifier

func (m Multi) Notify(event Event) {
	for _, n := range m {
		n.Notify(event)
	}
}

// Recorder captures events for inspection in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a snapshot of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in emission order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
