package auth

import (
	"sync"

	"dealscope-backend/internal/users"
)

// EventType distinguishes identity changes.
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

// Event describes an identity change.
type Event struct {
	Type EventType
	User users.UserProfile
	Demo bool
}

// Registry is the identity subscription primitive: every subscriber is
// invoked immediately with the current state and again on every change.
// Multiple independent subscribers are supported.
type Registry struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
	last   Event
}

// NewRegistry constructs a Registry in the signed-out state.
func NewRegistry() *Registry {
	return &Registry{
		subs: make(map[int]func(Event)),
		last: Event{Type: EventSignedOut},
	}
}

// Subscribe registers fn, invokes it with the current state, and returns a
// function that stops further notifications.
func (r *Registry) Subscribe(fn func(Event)) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	current := r.last
	r.mu.Unlock()

	fn(current)

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// Publish records the event as current state and notifies every subscriber.
func (r *Registry) Publish(e Event) {
	r.mu.Lock()
	r.last = e
	fns := make([]func(Event), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
