// Package signal provides a typed, ordered observer registry used for every
// event the weapon rig emits.
package signal

// Kind names an event stream. Handles carry the Kind of the Signal that
// issued them so an owner exposing several signals can route Unsubscribe.
type Kind string

// Handle identifies one subscription.
//
// Invariant: the zero Handle matches no subscription.
type Handle struct {
	kind Kind
	id   uint64
}

// Kind returns the event kind the handle was issued for.
func (h Handle) Kind() Kind { return h.kind }

// Valid reports whether h was issued by a Signal.
func (h Handle) Valid() bool { return h.id != 0 }

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Signal is an ordered list of subscriber callbacks for one event kind.
// Delivery is synchronous and in registration order. Signal is not safe for
// concurrent use; callers confine it to the simulation goroutine.
type Signal[T any] struct {
	kind Kind
	next uint64
	subs []subscriber[T]
}

// New returns an empty Signal for kind.
//
// Postcondition: Len() == 0.
func New[T any](kind Kind) *Signal[T] {
	return &Signal[T]{kind: kind}
}

// Kind returns the event kind of s.
func (s *Signal[T]) Kind() Kind { return s.kind }

// Subscribe appends fn to the subscriber list and returns its handle.
//
// Precondition: fn must not be nil (panics otherwise).
// Postcondition: fn receives every subsequent Emit until unsubscribed.
func (s *Signal[T]) Subscribe(fn func(T)) Handle {
	if fn == nil {
		panic("signal: Subscribe: fn must not be nil")
	}
	s.next++
	s.subs = append(s.subs, subscriber[T]{id: s.next, fn: fn})
	return Handle{kind: s.kind, id: s.next}
}

// Unsubscribe removes the subscription identified by h.
//
// Postcondition: returns true iff h was issued by s and was still subscribed.
func (s *Signal[T]) Unsubscribe(h Handle) bool {
	if h.kind != s.kind || h.id == 0 {
		return false
	}
	for i, sub := range s.subs {
		if sub.id == h.id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Emit delivers v to every subscriber registered at the time of the call.
// Subscriptions added or removed by a callback take effect on the next Emit.
func (s *Signal[T]) Emit(v T) {
	if len(s.subs) == 0 {
		return
	}
	snapshot := make([]subscriber[T], len(s.subs))
	copy(snapshot, s.subs)
	for _, sub := range snapshot {
		sub.fn(v)
	}
}

// Len returns the number of live subscriptions.
func (s *Signal[T]) Len() int { return len(s.subs) }

// Clear drops every subscription.
//
// Postcondition: Len() == 0.
func (s *Signal[T]) Clear() { s.subs = nil }
