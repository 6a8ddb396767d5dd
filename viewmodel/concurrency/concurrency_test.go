package concurrency_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/howettl/udf-view-model/viewmodel/concurrency"
	"github.com/howettl/udf-view-model/viewmodel/log"
	"github.com/stretchr/testify/assert"
)

func TestSupervisor_RunsChildren(t *testing.T) {
	ctx := context.Background()
	ctx, endOfLogHandler := log.WithTestLogEffectHandler(ctx)
	defer endOfLogHandler()

	sv := concurrency.NewSupervisor(ctx)
	var count atomic.Int32
	done := make(chan struct{}, 3)

	err := sv.Go(
		func(ctx context.Context) { count.Add(1); done <- struct{}{} },
		func(ctx context.Context) { count.Add(1); done <- struct{}{} },
		func(ctx context.Context) { count.Add(1); done <- struct{}{} },
	)
	assert.NoError(t, err)

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for children")
		}
	}
	sv.Close()
	assert.Equal(t, int32(3), count.Load())
}

func TestSupervisor_CloseCancelsAndJoins(t *testing.T) {
	ctx := context.Background()
	ctx, endOfLogHandler := log.WithTestLogEffectHandler(ctx)
	defer endOfLogHandler()

	sv := concurrency.NewSupervisor(ctx)
	var exited atomic.Bool
	_ = sv.Go(func(ctx context.Context) {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		exited.Store(true)
	})

	sv.Close()
	assert.True(t, exited.Load(), "close must wait for children")
	assert.ErrorIs(t, sv.Go(func(ctx context.Context) {}), concurrency.ErrSupervisorClosed)

	sv.Close() // idempotent
}

func TestSupervisor_ParentCancelPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	sv := concurrency.NewSupervisor(parent)

	cancelled := make(chan struct{})
	_ = sv.Go(func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	})

	cancel()
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("child was not cancelled with its parent")
	}

	assert.Eventually(t, func() bool {
		return sv.Go(func(ctx context.Context) {}) != nil
	}, time.Second, 5*time.Millisecond)
	sv.Close()
}

func TestSupervisor_PanicIsIsolated(t *testing.T) {
	ctx := context.Background()
	ctx, endOfLogHandler := log.WithTestLogEffectHandler(ctx)
	defer endOfLogHandler()

	sv := concurrency.NewSupervisor(ctx)
	defer sv.Close()

	sibling := make(chan struct{})
	_ = sv.Go(
		func(ctx context.Context) { panic("boom") },
		func(ctx context.Context) {
			time.Sleep(10 * time.Millisecond)
			close(sibling)
		},
	)

	select {
	case <-sibling:
	case <-time.After(time.Second):
		t.Fatal("sibling did not survive the panic")
	}
}
