// Package viewmodel provides a unidirectional data flow container for view
// state.
//
// A ViewModel holds one immutable state value and accepts two kinds of
// events:
//   - mutations, which derive a new state from the current one,
//   - effects, which perform side actions and never touch the state.
//
// # Mutations
//
// Mutations are queued without blocking the caller and applied one at a
// time, in the order the queue accepted them, by a single derivation
// goroutine. Derivation N+1 never starts before derivation N has returned,
// even when MutateState blocks on I/O. A derived state equal to the current
// one is conflated: subscribers see nothing.
//
// # Effects
//
// Effects are handed to HandleEffect on their own goroutine, concurrently
// with each other and with mutations. A failing effect is logged and
// observed and affects nothing else. Effects implementing Partitionable can
// be routed to ordered lanes with Config.EffectPartitions.
//
// # Subscriptions
//
// The state stream is cold until the first Subscribe. That call starts the
// derivation goroutine and the optional Initializer hook, exactly once per
// container. Every subscriber first receives the latest state and then
// each distinct state that follows. A slow subscriber may skip
// intermediate states but always converges on the latest one.
//
// # Lifecycle
//
// A ViewModel lives as long as the context passed to New, or until Close.
// When the scope ends, pending mutations are dropped, in-flight work is
// cancelled, and every subscriber channel is closed. Dispatching after that
// is a no-op that reports ErrScopeClosed.
//
// Example:
//
//	vm := viewmodel.New[State, Mutation, Effect](ctx, viewmodel.DefaultConfig(), viewmodel.Funcs[State, Mutation, Effect]{
//	    Create: func() State { return State{} },
//	    Mutate: reduce,
//	    Effect: perform,
//	})
//	states, _ := vm.Subscribe(ctx)
//	_ = vm.Dispatch(SignIn{})
//	for s := range states {
//	    render(s)
//	}
package viewmodel
