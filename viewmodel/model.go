package viewmodel

import (
	"context"
	"reflect"

	"github.com/howettl/udf-view-model/viewmodel/internal/model"
)

// Model supplies the behaviour of a ViewModel.
//
// MutateState is called from a single goroutine, one mutation at a time.
// It should be a function of its inputs; the container does not enforce
// that. HandleEffect may run concurrently with MutateState and with other
// HandleEffect calls.
type Model[S, M, E any] interface {
	CreateState() S
	MutateState(ctx context.Context, current S, mutation M) (S, error)
	HandleEffect(ctx context.Context, effect E) error
}

// Initializer is implemented by models that need a one-time hook once the
// state stream starts. The hook runs on its own goroutine; mutations it
// dispatches are applied after it has begun.
type Initializer interface {
	OnViewStateInitialized(ctx context.Context) error
}

// Equatable states decide their own equality for conflation. States that
// do not implement it are compared with reflect.DeepEqual, which never
// treats two non-nil funcs as equal: a state holding a func field is
// never conflated unless it implements Equatable.
type Equatable interface {
	Equals(other any) bool
}

// Partitionable effects are routed by key to ordered lanes when
// Config.EffectPartitions is positive.
type Partitionable = model.Partitionable

// NoMutation is the mutation type of containers that never change state.
type NoMutation struct{}

// NoEffect is the effect type of containers without side effects.
type NoEffect struct{}

var _ Model[struct{}, NoMutation, NoEffect] = Funcs[struct{}, NoMutation, NoEffect]{}
var _ Initializer = Funcs[struct{}, NoMutation, NoEffect]{}

// Funcs adapts plain functions to Model and Initializer. Nil fields fall
// back to defaults: the zero state, no init work, no state change, and no
// effect work.
type Funcs[S, M, E any] struct {
	Create func() S
	Init   func(ctx context.Context) error
	Mutate func(ctx context.Context, current S, mutation M) (S, error)
	Effect func(ctx context.Context, effect E) error
}

func (f Funcs[S, M, E]) CreateState() S {
	if f.Create == nil {
		var zero S
		return zero
	}
	return f.Create()
}

func (f Funcs[S, M, E]) OnViewStateInitialized(ctx context.Context) error {
	if f.Init == nil {
		return nil
	}
	return f.Init(ctx)
}

func (f Funcs[S, M, E]) MutateState(ctx context.Context, current S, mutation M) (S, error) {
	if f.Mutate == nil {
		return current, nil
	}
	return f.Mutate(ctx, current, mutation)
}

func (f Funcs[S, M, E]) HandleEffect(ctx context.Context, effect E) error {
	if f.Effect == nil {
		return nil
	}
	return f.Effect(ctx, effect)
}

func statesEqual[S any](a, b S) bool {
	if eq, ok := any(a).(Equatable); ok {
		return eq.Equals(b)
	}
	return reflect.DeepEqual(a, b)
}
