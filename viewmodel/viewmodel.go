package viewmodel

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/howettl/udf-view-model/viewmodel/concurrency"
	"github.com/howettl/udf-view-model/viewmodel/internal/handlers"
	"github.com/howettl/udf-view-model/viewmodel/log"
	"github.com/howettl/udf-view-model/viewmodel/observability"
)

// ViewModel is a unidirectional data flow container for a state S driven by
// mutations M and effects E. All methods are safe for concurrent use.
type ViewModel[S, M, E any] struct {
	id    string
	cfg   Config
	model Model[S, M, E]

	ctx    context.Context
	cancel context.CancelFunc
	sv     *concurrency.Supervisor

	queue   *handlers.Mailbox[M]
	holder  *stateHolder[S]
	effects *effectDispatcher[S, M, E]

	startOnce sync.Once
	started   atomic.Bool

	done chan struct{}

	errMu sync.Mutex
	err   error
}

// New creates a container bound to ctx. CreateState is called once, before
// New returns. Nothing else runs until the first Subscribe.
func New[S, M, E any](ctx context.Context, cfg Config, model Model[S, M, E]) *ViewModel[S, M, E] {
	cfg = cfg.normalized()
	scope, cancel := context.WithCancel(ctx)

	vm := &ViewModel[S, M, E]{
		id:     uuid.New().String(),
		cfg:    cfg,
		model:  model,
		ctx:    scope,
		cancel: cancel,
		sv:     concurrency.NewSupervisor(scope),
		queue:  handlers.NewMailbox[M](cfg.QueueCapacity),
		holder: newStateHolder(model.CreateState()),
		done:   make(chan struct{}),
	}
	vm.effects = newEffectDispatcher(vm)

	context.AfterFunc(scope, vm.teardown)

	vm.observe(observability.EventCreated, observability.LevelVerbose, observability.Instant(), nil)
	vm.logEff(log.LogDebug, "created view model", nil)
	return vm
}

// ID returns the container's unique id.
func (vm *ViewModel[S, M, E]) ID() string {
	return vm.id
}

// Dispatch queues a mutation. It never blocks. After the scope has ended
// the mutation is dropped and an error matching ErrScopeClosed is
// returned; after a terminating derivation failure the error matches
// ErrPipelineTerminated.
func (vm *ViewModel[S, M, E]) Dispatch(mutation M) error {
	if vm.ctx.Err() != nil {
		return ErrScopeClosed
	}
	if err := vm.queue.Push(mutation); err != nil {
		vm.logEff(log.LogDebug, "dropped mutation", map[string]interface{}{
			"mutation": mutation,
			"error":    err,
		})
		return err
	}
	return nil
}

// DispatchEffect hands an effect to HandleEffect. It never blocks and
// never changes the state. After the scope has ended the effect is dropped
// and ErrScopeClosed is returned.
func (vm *ViewModel[S, M, E]) DispatchEffect(effect E) error {
	if vm.ctx.Err() != nil {
		return ErrScopeClosed
	}
	if err := vm.effects.dispatch(effect); err != nil {
		vm.logEff(log.LogDebug, "dropped effect", map[string]interface{}{
			"effect": effect,
			"error":  err,
		})
		return err
	}
	return nil
}

// Subscribe returns a channel carrying the latest state followed by every
// distinct state after it. The first call starts the state pipeline. The
// channel is closed when ctx is done, when the scope ends, or when the
// pipeline terminates. After teardown the returned channel is already
// closed and the error tells why.
func (vm *ViewModel[S, M, E]) Subscribe(ctx context.Context) (<-chan S, error) {
	if vm.ctx.Err() != nil {
		return closedStream[S](), ErrScopeClosed
	}
	vm.start()

	id, ch, err := vm.holder.subscribe()
	if err != nil {
		return closedStream[S](), err
	}
	stop := context.AfterFunc(ctx, func() {
		if vm.holder.unsubscribe(id) {
			vm.observe(observability.EventUnsubscribed, observability.LevelVerbose, observability.Instant(), map[string]any{
				"subscription": id,
			})
		}
	})
	vm.holder.watch(id, stop)

	vm.observe(observability.EventSubscribed, observability.LevelVerbose, observability.Instant(), map[string]any{
		"subscription": id,
	})
	return ch, nil
}

// CurrentState returns the latest state without side effects.
func (vm *ViewModel[S, M, E]) CurrentState() S {
	return vm.holder.current()
}

// Started reports whether the state pipeline has been started.
func (vm *ViewModel[S, M, E]) Started() bool {
	return vm.started.Load()
}

// SubscriberCount returns the number of open subscriptions.
func (vm *ViewModel[S, M, E]) SubscriberCount() int {
	return vm.holder.count()
}

// Close ends the container's scope. It does not wait for teardown; use
// Done for that. Calling it more than once is harmless.
func (vm *ViewModel[S, M, E]) Close() {
	vm.cancel()
}

// Done is closed once the scope has ended and every goroutine of the
// container has returned.
func (vm *ViewModel[S, M, E]) Done() <-chan struct{} {
	return vm.done
}

// Err returns the failure that terminated the pipeline, if any. It is nil
// for a container that ended normally.
func (vm *ViewModel[S, M, E]) Err() error {
	vm.errMu.Lock()
	defer vm.errMu.Unlock()
	return vm.err
}

// teardown runs once, after the scope context is done. The state stream
// completes before joining, so a handler that ignores its context cannot
// hold subscribers open; Done still waits for every goroutine.
func (vm *ViewModel[S, M, E]) teardown() {
	vm.queue.Close(ErrScopeClosed)
	vm.holder.complete(ErrScopeClosed)
	vm.effects.close()
	vm.sv.Close()
	vm.effects.wait()

	vm.observe(observability.EventClosed, observability.LevelInfo, observability.Instant(), map[string]any{
		"error": vm.Err(),
	})
	vm.logEff(log.LogDebug, "closed view model", nil)
	close(vm.done)
}

// terminate stops the pipeline after a derivation failure. Effects keep
// being served until the scope ends.
func (vm *ViewModel[S, M, E]) terminate(err error) {
	vm.errMu.Lock()
	if vm.err == nil {
		vm.err = err
	}
	vm.errMu.Unlock()

	vm.queue.Close(ErrPipelineTerminated)
	vm.holder.complete(ErrPipelineTerminated)
}

func (vm *ViewModel[S, M, E]) observe(
	t observability.EventType,
	level observability.Level,
	span observability.TimeSpan,
	data map[string]any,
) {
	vm.cfg.Observer.OnEvent(vm.ctx, observability.Event{
		Type:   t,
		Level:  level,
		Span:   span,
		Source: vm.cfg.Name + "/" + vm.id,
		Data:   data,
	})
}

func (vm *ViewModel[S, M, E]) logEff(level log.LogLevel, msg string, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{}, 2)
	}
	fields["viewmodel"] = vm.cfg.Name
	fields["id"] = vm.id
	log.LogEff(vm.ctx, level, msg, fields)
}

func closedStream[S any]() <-chan S {
	ch := make(chan S)
	close(ch)
	return ch
}
