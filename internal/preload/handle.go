// Package preload starts GraphQL fetches ahead of the code that consumes
// them and hands back a memoised, read-many handle.
package preload

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// State is the lifecycle stage of a Handle.
type State int

const (
	NotStarted State = iota
	Pending
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Handle is the result of one preload. It resolves exactly once; every read
// after that returns the same value or error.
type Handle[T any] struct {
	id        string
	operation string
	done      chan struct{}

	mu    sync.RWMutex
	state State
	value *T
	err   error
}

func newHandle[T any](operation string) *Handle[T] {
	return &Handle[T]{
		id:        uuid.NewString(),
		operation: operation,
		done:      make(chan struct{}),
		state:     NotStarted,
	}
}

// ID uniquely identifies this preload in logs.
func (h *Handle[T]) ID() string { return h.id }

// Operation returns the name of the operation being fetched.
func (h *Handle[T]) Operation() string { return h.operation }

// State returns the current lifecycle stage.
func (h *Handle[T]) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Done is closed once the handle is Resolved or Failed.
func (h *Handle[T]) Done() <-chan struct{} { return h.done }

// Peek returns the current state and, once settled, the outcome, without
// blocking.
func (h *Handle[T]) Peek() (*T, State, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.value, h.state, h.err
}

// Read blocks until the fetch completes and returns its outcome. If ctx ends
// first Read returns ctx.Err(); the fetch itself keeps running and later
// reads still observe its result.
func (h *Handle[T]) Read(ctx context.Context) (*T, error) {
	select {
	case <-h.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.value, h.err
}

func (h *Handle[T]) start() {
	h.mu.Lock()
	h.state = Pending
	h.mu.Unlock()
}

func (h *Handle[T]) resolve(v *T, err error) {
	h.mu.Lock()
	if h.state == Resolved || h.state == Failed {
		h.mu.Unlock()
		return
	}
	h.value, h.err = v, err
	if err != nil {
		h.state = Failed
		h.value = nil
	} else {
		h.state = Resolved
	}
	h.mu.Unlock()
	close(h.done)
}
