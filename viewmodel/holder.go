package viewmodel

import (
	"sync"

	"github.com/google/uuid"
)

// stateHolder owns the current state and the subscriber slots. emit is
// only called from the derivation goroutine; the mutex serialises it with
// subscribe, unsubscribe and reads of the current state.
type stateHolder[S any] struct {
	mu        sync.Mutex
	state     S
	slots     map[string]*slot[S]
	completed bool
	cause     error
}

func newStateHolder[S any](initial S) *stateHolder[S] {
	return &stateHolder[S]{
		state: initial,
		slots: make(map[string]*slot[S]),
	}
}

func (h *stateHolder[S]) current() S {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// emit replaces the current state and broadcasts it. It reports false when
// next equals the current state or the holder is complete.
func (h *stateHolder[S]) emit(next S) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.completed || statesEqual(h.state, next) {
		return false
	}
	h.state = next
	for _, s := range h.slots {
		s.publish(next)
	}
	return true
}

// subscribe registers a slot primed with the current state.
func (h *stateHolder[S]) subscribe() (string, <-chan S, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.completed {
		return "", nil, h.cause
	}
	id := uuid.New().String()
	s := newSlot[S]()
	s.publish(h.state)
	h.slots[id] = s
	return id, s.ch, nil
}

// watch attaches the release func of the subscriber's context watcher. It
// is released immediately when the slot is already gone.
func (h *stateHolder[S]) watch(id string, stop func() bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.slots[id]
	if !ok {
		stop()
		return
	}
	s.stop = stop
}

func (h *stateHolder[S]) unsubscribe(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.slots[id]
	if !ok {
		return false
	}
	delete(h.slots, id)
	s.close()
	return true
}

// complete closes every slot. Later subscriptions fail with cause.
func (h *stateHolder[S]) complete(cause error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.completed {
		return false
	}
	h.completed = true
	h.cause = cause
	for id, s := range h.slots {
		s.close()
		delete(h.slots, id)
	}
	return true
}

func (h *stateHolder[S]) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.slots)
}

// slot is a single-value mailbox for one subscriber: a newer state
// replaces an unread older one. It never hands its reader two consecutive
// equal states, even when the values in between were overwritten.
type slot[S any] struct {
	ch chan S

	// acked is the last value known to have been read, pending the value
	// sitting in ch, if any.
	acked      S
	hasAcked   bool
	pending    S
	hasPending bool

	closed bool
	stop   func() bool
}

func newSlot[S any]() *slot[S] {
	return &slot[S]{ch: make(chan S, 1)}
}

// publish must be called with the holder's mutex held; the holder is the
// only sender, so the send below never blocks.
func (s *slot[S]) publish(v S) {
	if s.closed {
		return
	}
	if s.hasPending {
		select {
		case <-s.ch:
			// unread, overwritten below
		default:
			s.acked, s.hasAcked = s.pending, true
		}
		var zero S
		s.pending, s.hasPending = zero, false
	}
	if s.hasAcked && statesEqual(s.acked, v) {
		return
	}
	s.ch <- v
	s.pending, s.hasPending = v, true
}

func (s *slot[S]) close() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
	if s.stop != nil {
		s.stop()
	}
}
