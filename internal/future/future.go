// Package future provides a minimal value-or-error future, the Go analogue
// of Guava's ListenableFuture as used to compose the instance-data refresh
// DAG: a value becomes available once, is read many times, and downstream
// work can be scheduled to start only once a set of upstream futures has
// all settled.
package future

import (
	"context"

	"github.com/sufield/cloudsqlconn/internal/bg"
)

// Future holds the eventual result of one unit of work. Get blocks the
// calling goroutine until the result is available or ctx is done.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// New schedules fn on runner and returns a Future for its result. fn is
// called exactly once.
func New[T any](runner bg.Runner, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	runner.Do(func() {
		f.val, f.err = fn()
		close(f.done)
	})
	return f
}

// Get blocks until fn has run to completion or ctx is done, whichever comes
// first.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Waiter is satisfied by *Future[T] for any T, letting WhenAllComplete
// accept a heterogeneous slice of dependencies.
type Waiter interface {
	Wait(ctx context.Context)
}

// WhenAllComplete schedules fn on runner once every future in deps has
// settled (successfully or not), mirroring Futures.whenAllComplete(...).call(...).
// It does not itself check deps' errors; fn's body is expected to call Get
// on each dependency and propagate failures the same way it would for any
// other error.
func WhenAllComplete[T any](ctx context.Context, runner bg.Runner, deps []Waiter, fn func() (T, error)) *Future[T] {
	return New(runner, func() (T, error) {
		for _, d := range deps {
			d.Wait(ctx)
		}
		return fn()
	})
}

// Wait blocks until f has settled or ctx is done, discarding the result.
func (f *Future[T]) Wait(ctx context.Context) {
	select {
	case <-f.done:
	case <-ctx.Done():
	}
}
