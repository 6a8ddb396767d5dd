package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/howettl/udf-view-model/viewmodel/internal/handlers"
	"github.com/howettl/udf-view-model/viewmodel/internal/model"
	"github.com/stretchr/testify/assert"
)

const testKey model.HandlerKey = "udf_view_model_handler_key_test"

func TestFireAndForgetHandler_BasicExecution(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan string, 1)
	handler := handlers.NewFireAndForgetHandler(
		ctx,
		10,
		func(ctx context.Context, msg string) {
			done <- msg
		},
		func() {}, // no-op teardown
	)
	defer handler.Close()

	assert.NoError(t, handler.FireAndForget("hello"))

	select {
	case got := <-done:
		assert.Equal(t, "hello", got)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for handler")
	}
}

func TestFireAndForgetHandler_ClosedHandlerRejects(t *testing.T) {
	ctx := context.Background()
	tornDown := false

	handler := handlers.NewFireAndForgetHandler(
		ctx,
		1,
		func(ctx context.Context, msg string) {},
		func() { tornDown = true },
	)
	handler.Close()

	assert.True(t, tornDown)
	assert.ErrorIs(t, handler.FireAndForget("late"), handlers.ErrMailboxClosed)
}

func TestWithFireAndForgetHandler_RegisteredOnContext(t *testing.T) {
	ctx := context.Background()

	got := make(chan int, 1)
	ctxWith, end := handlers.WithFireAndForgetHandler(ctx, 1, testKey, func(ctx context.Context, v int) {
		got <- v
	}, func() {})

	assert.NoError(t, handlers.FireAndForget(ctxWith, testKey, 42))
	select {
	case v := <-got:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for registered handler")
	}

	parent := end()
	assert.Equal(t, ctx, parent)
}

func TestFireAndForget_NoHandler(t *testing.T) {
	err := handlers.FireAndForget(context.Background(), testKey, 1)
	assert.ErrorIs(t, err, model.ErrNoHandler)
}

func TestFireAndForget_WrongPayloadType(t *testing.T) {
	ctxWith, end := handlers.WithFireAndForgetHandler(context.Background(), 1, testKey, func(ctx context.Context, v int) {}, func() {})
	defer end()

	err := handlers.FireAndForget(ctxWith, testKey, "not an int")
	assert.Error(t, err)
}
