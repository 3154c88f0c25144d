// Package mailbox provides a single-slot, last-write-wins handoff from
// background work to the presentation layer.
package mailbox

import (
	"context"
	"sync"
)

// Mailbox holds at most one undelivered value. Publish overwrites any pending
// value and raises the wake signal; consumers wait on Wake and then Take.
type Mailbox[T any] struct {
	mu    sync.Mutex
	value T
	full  bool
	wake  chan struct{}
}

// New returns an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{wake: make(chan struct{}, 1)}
}

// Publish stores v, replacing any undelivered value.
func (m *Mailbox[T]) Publish(v T) {
	m.mu.Lock()
	m.value = v
	m.full = true
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Wake is signalled after a publish. Several publishes before a receive
// coalesce into one signal.
func (m *Mailbox[T]) Wake() <-chan struct{} {
	return m.wake
}

// Take removes and returns the pending value, if any.
func (m *Mailbox[T]) Take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if !m.full {
		return zero, false
	}
	v := m.value
	m.value = zero
	m.full = false
	return v, true
}

// Wait blocks until a value is available or ctx ends.
func (m *Mailbox[T]) Wait(ctx context.Context) (T, error) {
	for {
		if v, ok := m.Take(); ok {
			return v, nil
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-m.wake:
		}
	}
}
