package viewmodel

import "errors"

var (
	// ErrScopeClosed is reported by Dispatch, DispatchEffect and Subscribe
	// once the container's scope has ended. It is informational; ignoring
	// it is safe.
	ErrScopeClosed = errors.New("viewmodel: scope closed")

	// ErrPipelineTerminated is reported by Dispatch and Subscribe after a
	// derivation failure stopped the state pipeline.
	ErrPipelineTerminated = errors.New("viewmodel: state pipeline terminated")

	// ErrDerivationFailure wraps an error or panic from MutateState.
	ErrDerivationFailure = errors.New("viewmodel: derivation failed")

	// ErrEffectHandlerFailure wraps an error or panic from HandleEffect.
	ErrEffectHandlerFailure = errors.New("viewmodel: effect handler failed")

	// ErrInitHookFailure wraps an error or panic from OnViewStateInitialized.
	ErrInitHookFailure = errors.New("viewmodel: init hook failed")
)
