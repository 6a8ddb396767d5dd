package viewmodel

import (
	"context"
	"fmt"
	"time"

	"github.com/howettl/udf-view-model/shared/helper"
	"github.com/howettl/udf-view-model/viewmodel/log"
	"github.com/howettl/udf-view-model/viewmodel/observability"
)

// start launches the init hook and the derivation goroutine, once. It
// returns after the hook has begun, so the hook always precedes the first
// state handed to the first subscriber and the first derivation.
func (vm *ViewModel[S, M, E]) start() {
	vm.startOnce.Do(func() {
		vm.started.Store(true)
		vm.observe(observability.EventStarted, observability.LevelInfo, observability.Instant(), nil)
		vm.logEff(log.LogDebug, "state pipeline started", nil)

		if hook, ok := vm.model.(Initializer); ok {
			begun := make(chan struct{})
			err := vm.sv.Go(func(ctx context.Context) {
				vm.runInitHook(ctx, hook, begun)
			})
			if err != nil {
				return
			}
			<-begun
		}
		_ = vm.sv.Go(vm.runPipeline)
	})
}

func (vm *ViewModel[S, M, E]) runInitHook(ctx context.Context, hook Initializer, begun chan<- struct{}) {
	start := time.Now()
	close(begun)
	vm.observe(observability.EventInitStart, observability.LevelVerbose, observability.Instant(), nil)

	err := callInitHook(ctx, hook)
	if err == nil {
		vm.observe(observability.EventInitComplete, observability.LevelVerbose, observability.Between(start), nil)
		return
	}
	if ctx.Err() != nil {
		return
	}
	err = fmt.Errorf("%w: %w", ErrInitHookFailure, err)
	vm.observe(observability.EventInitFailed, observability.LevelError, observability.Between(start), map[string]any{
		"error": err,
	})
	vm.logEff(log.LogError, "init hook failed", map[string]interface{}{
		"error": err,
	})
}

// runPipeline drains the mutation queue until the scope ends or a
// derivation failure terminates it.
func (vm *ViewModel[S, M, E]) runPipeline(ctx context.Context) {
	for {
		mutation, ok := vm.queue.Pop(ctx)
		if !ok {
			return
		}
		if !vm.derive(ctx, mutation) {
			return
		}
	}
}

// derive applies one mutation. It reports false when the pipeline must
// stop.
func (vm *ViewModel[S, M, E]) derive(ctx context.Context, mutation M) bool {
	start := time.Now()
	next, err := callMutate(ctx, vm.model, vm.holder.current(), mutation)
	if ctx.Err() != nil {
		// scope ended mid-derivation; the result is discarded
		return false
	}

	if err != nil {
		err = fmt.Errorf("%w: %T: %w", ErrDerivationFailure, mutation, err)
		vm.observe(observability.EventMutationFailed, observability.LevelError, observability.Between(start), map[string]any{
			"mutation": fmt.Sprintf("%T", mutation),
			"policy":   vm.cfg.FailurePolicy.String(),
			"error":    err,
		})
		vm.logEff(log.LogError, "derivation failed", map[string]interface{}{
			"mutation": mutation,
			"policy":   vm.cfg.FailurePolicy.String(),
			"error":    err,
		})
		if vm.cfg.FailurePolicy == ContinueOnFailure {
			return true
		}
		vm.terminate(err)
		return false
	}

	if vm.holder.emit(next) {
		vm.observe(observability.EventMutationDerived, observability.LevelVerbose, observability.Between(start), map[string]any{
			"mutation": fmt.Sprintf("%T", mutation),
		})
		return true
	}

	vm.observe(observability.EventMutationConflated, observability.LevelVerbose, observability.Between(start), map[string]any{
		"mutation": fmt.Sprintf("%T", mutation),
	})
	vm.logEff(log.LogDebug, "conflated state", map[string]interface{}{
		"mutation": mutation,
	})
	return true
}

func callMutate[S, M, E any](ctx context.Context, m Model[S, M, E], current S, mutation M) (next S, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = current
			err = helper.RecoveredError(r)
		}
	}()
	return m.MutateState(ctx, current, mutation)
}

func callInitHook(ctx context.Context, hook Initializer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = helper.RecoveredError(r)
		}
	}()
	return hook.OnViewStateInitialized(ctx)
}
