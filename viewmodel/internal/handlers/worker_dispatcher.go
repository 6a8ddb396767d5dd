package handlers

import (
	"context"
	"sync"

	"github.com/howettl/udf-view-model/viewmodel/internal/model"
)

// --- common interface ---

type WorkerDispatcher[T any] interface {
	Dispatch(msg T) error
	Close(cause error)
	Wait()
}

// --- single worker ---

type singleWorker[T any] struct {
	mailbox *Mailbox[T]
	wg      *sync.WaitGroup
}

func (w singleWorker[T]) Dispatch(msg T) error {
	return w.mailbox.Push(msg)
}

func (w singleWorker[T]) Close(cause error) {
	w.mailbox.Close(cause)
}

func (w singleWorker[T]) Wait() {
	w.wg.Wait()
}

// NewSingleWorker drains one mailbox on one goroutine, so messages are
// handled one at a time in arrival order.
func NewSingleWorker[T any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, T),
) WorkerDispatcher[T] {
	mb := NewMailbox[T](bufferSize)
	wg := &sync.WaitGroup{}
	ready := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		close(ready)
		drain(ctx, mb, handleFn)
	}()

	<-ready

	return singleWorker[T]{mailbox: mb, wg: wg}
}

// --- partitioned workers ---

type partitionedWorkers[T model.Partitionable] struct {
	mailboxes []*Mailbox[T]
	wg        *sync.WaitGroup
}

func (pw partitionedWorkers[T]) Dispatch(msg T) error {
	idx := getIndexByHash(msg, len(pw.mailboxes))
	return pw.mailboxes[idx].Push(msg)
}

func (pw partitionedWorkers[T]) Close(cause error) {
	for _, mb := range pw.mailboxes {
		mb.Close(cause)
	}
}

func (pw partitionedWorkers[T]) Wait() {
	pw.wg.Wait()
}

// NewPartitionedWorkers starts one worker per lane. Messages with the same
// partition key always land on the same lane and keep their relative order.
func NewPartitionedWorkers[T model.Partitionable](
	ctx context.Context,
	config model.ScopeConfig,
	handleFn func(context.Context, T),
) WorkerDispatcher[T] {
	mailboxes := make([]*Mailbox[T], config.NumWorkers)
	wg := &sync.WaitGroup{}
	ready := sync.WaitGroup{}
	for i := 0; i < config.NumWorkers; i++ {
		mb := NewMailbox[T](config.BufferSize)
		wg.Add(1)
		ready.Add(1)
		go func() {
			defer wg.Done()
			ready.Done()
			drain(ctx, mb, handleFn)
		}()
		mailboxes[i] = mb
	}
	ready.Wait()
	return partitionedWorkers[T]{mailboxes: mailboxes, wg: wg}
}

func drain[T any](ctx context.Context, mb *Mailbox[T], handleFn func(context.Context, T)) {
	for {
		msg, ok := mb.Pop(ctx)
		if !ok {
			return
		}
		handleFn(ctx, msg)
	}
}
