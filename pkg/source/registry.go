package source

import (
	"reflect"
	"sync"
)

// entry is the versioned state of one source.
type entry struct {
	value   any
	version Version
	subs    []Subscriber
}

// Registry is the in-memory Provider. Values are versioned; writing a
// value that compares equal to the current one does not bump the version
// and notifies nobody.
type Registry struct {
	mu      sync.RWMutex
	entries map[ID]*entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ID]*entry)}
}

// Read implements Provider.
func (r *Registry) Read(id ID) (any, Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, 0, ErrUnknownSource
	}
	return e.value, e.version, nil
}

// Subscribe implements Provider. Subscribing to a source that does not
// exist yet is allowed; the subscriber is notified on its first write.
func (r *Registry) Subscribe(id ID, s Subscriber) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.ensure(id)
	sid := s.SubscriberID()
	for _, existing := range e.subs {
		if existing.SubscriberID() == sid {
			return
		}
	}
	e.subs = append(e.subs, s)
}

// Unsubscribe implements Provider.
func (r *Registry) Unsubscribe(id ID, s Subscriber) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return
	}
	sid := s.SubscriberID()
	for i, existing := range e.subs {
		if existing.SubscriberID() == sid {
			e.subs[i] = e.subs[len(e.subs)-1]
			e.subs = e.subs[:len(e.subs)-1]
			return
		}
	}
}

// Write sets the source's value, bumping its version and notifying
// subscribers unless the value is structurally equal to the current one.
func (r *Registry) Write(id ID, value any) {
	r.mu.Lock()
	e := r.ensure(id)
	if e.version > 0 && reflect.DeepEqual(e.value, value) {
		r.mu.Unlock()
		return
	}
	e.value = value
	e.version++
	version := e.version
	// Copy before notifying so subscriber callbacks can resubscribe
	// without deadlocking.
	subs := make([]Subscriber, len(e.subs))
	copy(subs, e.subs)
	r.mu.Unlock()

	for _, s := range subs {
		s.SourceChanged(id, version)
	}
}

// Subscribers returns the number of live subscriptions on id.
func (r *Registry) Subscribers(id ID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return 0
	}
	return len(e.subs)
}

// ensure returns the entry for id, creating it at version 0 if needed.
// Callers must hold mu.
func (r *Registry) ensure(id ID) *entry {
	e, ok := r.entries[id]
	if !ok {
		e = &entry{}
		r.entries[id] = e
	}
	return e
}

// Source is a typed handle on one Registry source.
type Source[T any] struct {
	id       ID
	registry *Registry
}

// NewSource declares a typed source in the registry with an initial value.
func NewSource[T any](r *Registry, id ID, initial T) *Source[T] {
	r.Write(id, initial)
	return &Source[T]{id: id, registry: r}
}

// ID returns the source id, used with Ctx.Read inside presenters.
func (s *Source[T]) ID() ID {
	return s.id
}

// Set writes a new value. Equal values are dropped without a version bump.
func (s *Source[T]) Set(value T) {
	s.registry.Write(s.id, value)
}

// Peek returns the current value without recording any dependency.
func (s *Source[T]) Peek() T {
	v, _, err := s.registry.Read(s.id)
	if err != nil {
		var zero T
		return zero
	}
	return v.(T)
}
