// Package event implements the subscribe/trigger bus and the debounce
// coordinator used to serialize expensive re-analysis against rapid
// document edits.
package event

import "sync"

// Token is an opaque handle returned by Subscribe. Unsubscribe removes
// a handler by this identity rather than by slice index, which is the
// source bug the design notes call out: a splice-by-index unsubscribe
// corrupts later indices when two unsubscribes race.
type Token struct{ id uint64 }

type subscription[T any] struct {
	token   Token
	handler func(T)
	removed bool
}

// Event is a typed pub/sub channel. Handlers run synchronously, in
// subscription order, on the goroutine that calls Trigger.
type Event[T any] struct {
	mu     sync.Mutex
	subs   []*subscription[T]
	nextID uint64
}

// New creates an empty event.
func New[T any]() *Event[T] {
	return &Event[T]{}
}

// Subscribe registers handler and returns a token that Unsubscribe can
// later use to remove it. Subscribing from within a handler that is
// itself running as part of an in-flight Trigger is permitted; the new
// handler does not fire for that in-flight trigger, only for later
// ones.
func (e *Event[T]) Subscribe(handler func(T)) Token {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	tok := Token{id: e.nextID}
	e.subs = append(e.subs, &subscription[T]{token: tok, handler: handler})
	return tok
}

// Unsubscribe removes the handler identified by tok, if still present.
// It finds the subscription by token identity (never by index), marks it
// removed, and compacts the slice at once. An in-flight Trigger iterates
// its own snapshot of the subscription pointers and skips entries marked
// removed, so it is not affected by the compaction.
func (e *Event[T]) Unsubscribe(tok Token) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, s := range e.subs {
		if s.token == tok {
			s.removed = true
			break
		}
	}
	e.compact()
}

// compact drops tombstoned entries. Must be called with e.mu held.
func (e *Event[T]) compact() {
	live := e.subs[:0]
	for _, s := range e.subs {
		if !s.removed {
			live = append(live, s)
		}
	}
	e.subs = live
}

// Trigger invokes every currently-subscribed handler, in subscription
// order, with arg. Re-entrant triggers fired from within a handler are
// permitted. The handler slice is snapshotted before iterating so a
// handler that subscribes or unsubscribes during the call does not
// perturb this trigger's delivery.
func (e *Event[T]) Trigger(arg T) {
	e.mu.Lock()
	snapshot := make([]*subscription[T], len(e.subs))
	copy(snapshot, e.subs)
	e.mu.Unlock()

	for _, s := range snapshot {
		if !s.removed {
			s.handler(arg)
		}
	}
}

// Len reports the number of live subscriptions, mostly useful for
// tests asserting unsubscribe took effect.
func (e *Event[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.subs {
		if !s.removed {
			n++
		}
	}
	return n
}
