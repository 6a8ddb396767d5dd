package handlers

import (
	"context"
	"fmt"

	"github.com/howettl/udf-view-model/shared/helper"
	"github.com/howettl/udf-view-model/viewmodel/internal/model"
)

// FireAndForgetHandler handles payloads on a single worker without
// reporting results back to the sender.
type FireAndForgetHandler[T any] struct {
	*Scope[T]
}

func NewFireAndForgetHandler[T any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, T),
	teardown func(),
) FireAndForgetHandler[T] {
	ctx, cancelFn := context.WithCancel(ctx)
	return FireAndForgetHandler[T]{
		Scope: NewScope(
			NewSingleWorker(ctx, bufferSize, handleFn),
			func() {
				cancelFn()
				teardown()
			},
		),
	}
}

// FireAndForget enqueues payload. It never blocks and fails only once the
// handler has been closed.
func (h FireAndForgetHandler[T]) FireAndForget(payload T) error {
	return h.Dispatch(payload)
}

// WithFireAndForgetHandler registers a fire-and-forget handler on ctx
// under key. The returned function closes the handler and gives back the
// parent context.
func WithFireAndForgetHandler[T any](
	ctx context.Context,
	bufferSize int,
	key model.HandlerKey,
	handleFn func(context.Context, T),
	teardown func(),
) (context.Context, func() context.Context) {
	handler := NewFireAndForgetHandler(ctx, bufferSize, handleFn, teardown)
	ctxWith := context.WithValue(ctx, key, handler)
	return ctxWith, func() context.Context {
		handler.Close()
		return ctx
	}
}

// FireAndForget sends payload to the handler registered under key.
func FireAndForget[T any](ctx context.Context, key model.HandlerKey, payload T) error {
	handler, err := helper.GetTypedValueOf[FireAndForgetHandler[T]](func() (any, error) {
		return GetHandler(ctx, key)
	})
	if err != nil {
		return err
	}
	return handler.FireAndForget(payload)
}

// GetHandler checks whether a handler for the given key is registered in the context.
func GetHandler(ctx context.Context, key model.HandlerKey) (any, error) {
	raw := ctx.Value(key)
	if raw == nil {
		return nil, fmt.Errorf("%w: %v", model.ErrNoHandler, key)
	}
	return raw, nil
}
