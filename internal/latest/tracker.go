// Package latest guards a result slot against superseded requests.
//
// Each search begins a new generation. Starting a generation cancels the
// context of the previous one, and a completion is applied only if its
// ticket still names the current generation.
package latest

import (
	"context"
	"sync"
)

// Ticket identifies one generation of a Tracker.
// The zero Ticket is never current.
type Ticket uint64

// Tracker hands out tickets for one result slot. It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	gen    Ticket
	cancel context.CancelFunc
}

// New returns a Tracker with no generation in flight.
func New() *Tracker {
	return &Tracker{}
}

// Begin starts a new generation derived from parent, cancelling the previous one.
func (t *Tracker) Begin(parent context.Context) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	t.gen++
	t.cancel = cancel
	return ctx, t.gen
}

// IsCurrent reports whether tk is the newest generation.
func (t *Tracker) IsCurrent(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tk != 0 && tk == t.gen
}

// Pending reports whether the current generation has not finished yet.
func (t *Tracker) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Finish releases the context of tk and reports whether tk was current.
// A stale ticket leaves the current generation untouched.
func (t *Tracker) Finish(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tk == 0 || tk != t.gen {
		return false
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	return true
}

// Cancel aborts the in-flight generation, if any, and invalidates its ticket.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.gen++
}
