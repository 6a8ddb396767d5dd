package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrMailboxClosed = errors.New("mailbox is closed")

// Mailbox is an unbounded FIFO with many producers and a single consumer.
// Push never blocks. Items are delivered in the order the mailbox accepted
// them; items still pending when the mailbox closes are dropped.
type Mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	err    error

	notify chan struct{}
	done   chan struct{}
}

func NewMailbox[T any](capacity int) *Mailbox[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Mailbox[T]{
		items:  make([]T, 0, capacity),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push appends msg. It fails only after Close.
func (m *Mailbox[T]) Push(msg T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return m.err
	}
	m.items = append(m.items, msg)

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return nil
}

// Pop blocks until an item is available. ok is false once the mailbox is
// closed or ctx is done.
func (m *Mailbox[T]) Pop(ctx context.Context) (msg T, ok bool) {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return msg, false
		}
		if len(m.items) > 0 {
			msg = m.items[0]
			var zero T
			m.items[0] = zero
			m.items = m.items[1:]
			if len(m.items) == 0 {
				m.items = m.items[:0:0]
			}
			m.mu.Unlock()
			return msg, true
		}
		m.mu.Unlock()

		select {
		case <-m.notify:
		case <-m.done:
		case <-ctx.Done():
			return msg, false
		}
	}
}

// Close stops the mailbox. Later pushes return an error wrapping both
// ErrMailboxClosed and cause. Only the first call has an effect.
func (m *Mailbox[T]) Close(cause error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}
	m.closed = true
	if cause != nil {
		m.err = fmt.Errorf("%w: %w", ErrMailboxClosed, cause)
	} else {
		m.err = ErrMailboxClosed
	}
	m.items = nil
	close(m.done)
	return true
}

// Len reports the number of pending items.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Mailbox[T]) Done() <-chan struct{} {
	return m.done
}
