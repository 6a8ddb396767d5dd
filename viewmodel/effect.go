package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/howettl/udf-view-model/shared/helper"
	"github.com/howettl/udf-view-model/viewmodel/concurrency"
	"github.com/howettl/udf-view-model/viewmodel/internal/handlers"
	"github.com/howettl/udf-view-model/viewmodel/internal/model"
	"github.com/howettl/udf-view-model/viewmodel/log"
	"github.com/howettl/udf-view-model/viewmodel/observability"
)

// effectDispatcher runs each effect as an independent unit of work. With
// lanes configured, Partitionable effects sharing a key are handled in
// dispatch order on one lane; everything else gets its own goroutine.
type effectDispatcher[S, M, E any] struct {
	vm    *ViewModel[S, M, E]
	lanes handlers.WorkerDispatcher[laneEffect[E]]
}

type laneEffect[E any] struct {
	effect E
	key    string
}

func (l laneEffect[E]) PartitionKey() string { return l.key }

func newEffectDispatcher[S, M, E any](vm *ViewModel[S, M, E]) *effectDispatcher[S, M, E] {
	d := &effectDispatcher[S, M, E]{vm: vm}
	if vm.cfg.EffectPartitions > 0 {
		d.lanes = handlers.NewPartitionedWorkers(
			vm.ctx,
			model.NewScopeConfig(vm.cfg.QueueCapacity, vm.cfg.EffectPartitions),
			func(ctx context.Context, msg laneEffect[E]) {
				d.handle(ctx, msg.effect)
			},
		)
	}
	return d
}

func (d *effectDispatcher[S, M, E]) dispatch(effect E) error {
	if p, ok := any(effect).(Partitionable); ok && d.lanes != nil {
		return d.lanes.Dispatch(laneEffect[E]{effect: effect, key: p.PartitionKey()})
	}
	err := d.vm.sv.Go(func(ctx context.Context) {
		d.handle(ctx, effect)
	})
	if errors.Is(err, concurrency.ErrSupervisorClosed) {
		return ErrScopeClosed
	}
	return err
}

func (d *effectDispatcher[S, M, E]) handle(ctx context.Context, effect E) {
	start := time.Now()
	err := callEffect(ctx, d.vm.model, effect)
	if err == nil {
		d.vm.observe(observability.EventEffectHandled, observability.LevelVerbose, observability.Between(start), map[string]any{
			"effect": fmt.Sprintf("%T", effect),
		})
		return
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		// cancelled by teardown, not a handler failure
		return
	}

	err = fmt.Errorf("%w: %T: %w", ErrEffectHandlerFailure, effect, err)
	d.vm.observe(observability.EventEffectFailed, observability.LevelError, observability.Between(start), map[string]any{
		"effect": fmt.Sprintf("%T", effect),
		"error":  err,
	})
	d.vm.logEff(log.LogError, "effect handler failed", map[string]interface{}{
		"effect": effect,
		"error":  err,
	})
}

func (d *effectDispatcher[S, M, E]) close() {
	if d.lanes != nil {
		d.lanes.Close(ErrScopeClosed)
	}
}

func (d *effectDispatcher[S, M, E]) wait() {
	if d.lanes != nil {
		d.lanes.Wait()
	}
}

func callEffect[S, M, E any](ctx context.Context, m Model[S, M, E], effect E) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = helper.RecoveredError(r)
		}
	}()
	return m.HandleEffect(ctx, effect)
}
