package handlers

import (
	"sync"

	"github.com/google/uuid"
)

// Scope pairs a dispatcher with an id and a teardown that runs once.
// Close is safe to call from any goroutine.
type Scope[T any] struct {
	ID string
	WorkerDispatcher[T]

	once    sync.Once
	closeFn func()
}

func (s *Scope[T]) Close() {
	s.once.Do(s.closeFn)
}

func NewScope[T any](
	dispatcher WorkerDispatcher[T],
	teardown func(),
) *Scope[T] {
	return &Scope[T]{
		ID:               uuid.New().String(),
		WorkerDispatcher: dispatcher,
		closeFn: func() {
			dispatcher.Close(nil)
			dispatcher.Wait()
			teardown()
		},
	}
}
