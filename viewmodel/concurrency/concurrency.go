// Package concurrency supervises goroutines bound to a scope.
package concurrency

import (
	"context"
	"errors"
	"sync"

	"github.com/howettl/udf-view-model/viewmodel/log"
)

var ErrSupervisorClosed = errors.New("supervisor is closed")

// Supervisor manages the lifecycle of child goroutines spawned under one
// scope. Every child gets its own cancellable context derived from the
// scope. A panic in a child is recovered and logged without touching its
// siblings. Close cancels the scope and joins all children.
type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool

	stopWatch func() bool
}

// NewSupervisor creates a supervisor whose scope ends when parent is done
// or Close is called, whichever comes first.
func NewSupervisor(parent context.Context) *Supervisor {
	ctx, cancel := context.WithCancel(parent)
	s := &Supervisor{
		ctx:    ctx,
		cancel: cancel,
	}
	s.stopWatch = context.AfterFunc(parent, func() {
		log.LogEff(parent, log.LogDebug, "context cancelled, waiting for all routines to finish", nil)
		s.markClosed()
	})
	return s
}

// Context returns the scope context children are derived from.
func (s *Supervisor) Context() context.Context {
	return s.ctx
}

// Go starts each function on its own goroutine and returns once all of
// them are running.
func (s *Supervisor) Go(fns ...func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSupervisorClosed
	}

	ready := sync.WaitGroup{}
	for _, fn := range fns {
		childCtx, cancel := context.WithCancel(s.ctx)
		s.wg.Add(1)
		ready.Add(1)
		go func(f func(context.Context), ctx context.Context) {
			defer s.wg.Done()
			defer cancel()
			defer func() {
				if r := recover(); r != nil {
					log.LogEff(s.ctx, log.LogError, "panic in child routine", map[string]interface{}{
						"error": r,
					})
				}
			}()
			ready.Done()
			f(ctx)
		}(fn, childCtx)
	}

	// Wait until all child goroutines have been started before returning
	ready.Wait()
	return nil
}

// Close cancels every child and blocks until all of them return. It is
// idempotent.
func (s *Supervisor) Close() {
	s.stopWatch()
	s.markClosed()
	s.wait()
}

func (s *Supervisor) wait() {
	s.wg.Wait()
	log.LogEff(s.ctx, log.LogDebug, "all routines finished", nil)
}

func (s *Supervisor) markClosed() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}
