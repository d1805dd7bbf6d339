// Package handle hands out opaque integer handles for values owned across
// the C boundary. A handle stays valid until it is destroyed; it is never
// reused afterwards, so a stale handle is always reported instead of
// silently hitting another model.
package handle

import (
	"errors"
	"fmt"
	"sync"
)

// ID identifies one live value. 0 is never issued.
type ID uint64

var (
	ErrUninitializedHandle = errors.New("uninitialized handle")
	ErrUseAfterDestroy     = errors.New("handle used after destroy")
)

type entry[T any] struct {
	mu        sync.Mutex
	value     T
	destroyed bool
}

// Table maps IDs to values of type T. Calls on different IDs run
// concurrently; calls on the same ID are serialised.
type Table[T any] struct {
	mu   sync.Mutex
	next ID
	live map[ID]*entry[T]
}

func NewTable[T any]() *Table[T] {
	return &Table[T]{next: 1, live: make(map[ID]*entry[T])}
}

func (t *Table[T]) Insert(value T) ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.next
	t.next++
	t.live[id] = &entry[T]{value: value}
	return id
}

// lookup must be called with t.mu held.
func (t *Table[T]) lookup(id ID) (*entry[T], error) {
	if e, ok := t.live[id]; ok {
		return e, nil
	}
	if id == 0 || id >= t.next {
		return nil, fmt.Errorf("%w: %d", ErrUninitializedHandle, id)
	}
	return nil, fmt.Errorf("%w: %d", ErrUseAfterDestroy, id)
}

// With runs fn on the value behind id while holding that value's lock.
func (t *Table[T]) With(id ID, fn func(T) error) error {
	t.mu.Lock()
	e, err := t.lookup(id)
	t.mu.Unlock()
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// Remove won the race between lookup and lock
	if e.destroyed {
		return fmt.Errorf("%w: %d", ErrUseAfterDestroy, id)
	}
	return fn(e.value)
}

// Remove destroys id. It waits for a call in progress on id to finish.
func (t *Table[T]) Remove(id ID) error {
	t.mu.Lock()
	e, err := t.lookup(id)
	if err == nil {
		delete(t.live, id)
	}
	t.mu.Unlock()
	if err != nil {
		return err
	}

	e.mu.Lock()
	var zero T
	e.value = zero
	e.destroyed = true
	e.mu.Unlock()
	return nil
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}
