package viewmodel_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/howettl/udf-view-model/viewmodel"
)

// --- sign-in domain used across tests ---

type authState struct {
	IsSignedIn bool
}

type authMutation interface{ authMutation() }

type signIn struct{}
type signOut struct{}
type explode struct{}

func (signIn) authMutation()  {}
func (signOut) authMutation() {}
func (explode) authMutation() {}

type authEffect interface{ authEffect() }

type continuePressed struct{ Source string }
type failingEffect struct{}
type panickingEffect struct{}

func (continuePressed) authEffect() {}
func (failingEffect) authEffect()   {}
func (panickingEffect) authEffect() {}

var errBoom = errors.New("boom")

type authModel struct {
	mu      sync.Mutex
	effects []authEffect
	created int
}

func (m *authModel) CreateState() authState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
	return authState{IsSignedIn: false}
}

func (m *authModel) MutateState(ctx context.Context, current authState, mutation authMutation) (authState, error) {
	switch mutation.(type) {
	case signIn:
		return authState{IsSignedIn: true}, nil
	case signOut:
		return authState{IsSignedIn: false}, nil
	case explode:
		return current, errBoom
	default:
		panic("unknown mutation")
	}
}

func (m *authModel) HandleEffect(ctx context.Context, effect authEffect) error {
	switch effect.(type) {
	case failingEffect:
		return errBoom
	case panickingEffect:
		panic("effect exploded")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.effects = append(m.effects, effect)
	return nil
}

func (m *authModel) handledEffects() []authEffect {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]authEffect, len(m.effects))
	copy(out, m.effects)
	return out
}

// --- channel helpers ---

func receive[S any](t *testing.T, ch <-chan S) S {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("stream closed unexpectedly")
		}
		return v
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for state")
	}
	var zero S
	return zero
}

func expectNone[S any](t *testing.T, ch <-chan S, wait time.Duration) {
	t.Helper()
	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("unexpected emission: %+v", v)
		}
		t.Fatal("stream closed unexpectedly")
	case <-time.After(wait):
	}
}

func expectClosed[S any](t *testing.T, ch <-chan S) {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("timeout waiting for stream to close")
		}
	}
}

func waitDone[S, M, E any](t *testing.T, vm *viewmodel.ViewModel[S, M, E]) {
	t.Helper()
	select {
	case <-vm.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for teardown")
	}
}
