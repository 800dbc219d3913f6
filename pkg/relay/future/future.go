// Package future provides a settle-once value with continuation chaining.
//
// A Future is either pending, resolved with a value, or rejected with an
// error. Continuations registered with OnSettle run exactly once, on the
// goroutine that settles the future (or immediately, on the caller's
// goroutine, when the future has already settled). Nothing in this package
// blocks except Await.
//
//	f := future.New[int]()
//	doubled := future.Then(f, func(v int) (int, error) { return v * 2, nil })
//	f.Resolve(21)
//	v, err := doubled.Await(ctx) // 42, nil
package future

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNilRejection is the reason recorded when Reject is called with a nil error.
var ErrNilRejection = errors.New("future rejected without a reason")

// Thenable is the type-erased view of a pending computation.
// Anything that can report its eventual outcome satisfies it, which lets
// callers suspend on futures without knowing their value type.
type Thenable interface {
	Notify(fn func(value any, err error))
}

// Future holds the eventual outcome of an asynchronous operation.
// The zero value is not usable; use New, Resolved or Rejected.
type Future[T any] struct {
	mu      sync.Mutex
	done    chan struct{}
	settled bool
	value   T
	err     error
	waiters []func(T, error)
}

// Compile-time interface check.
var _ Thenable = (*Future[any])(nil)

// New creates a pending future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved creates a future already resolved with v.
func Resolved[T any](v T) *Future[T] {
	f := New[T]()
	f.Resolve(v)
	return f
}

// Rejected creates a future already rejected with err.
func Rejected[T any](err error) *Future[T] {
	f := New[T]()
	f.Reject(err)
	return f
}

// Resolve settles the future with a value.
// Returns false if the future was already settled.
func (f *Future[T]) Resolve(v T) bool {
	return f.settle(v, nil)
}

// Reject settles the future with an error.
// Returns false if the future was already settled.
func (f *Future[T]) Reject(err error) bool {
	if err == nil {
		err = ErrNilRejection
	}
	var zero T
	return f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.value = v
	f.err = err
	waiters := f.waiters
	f.waiters = nil
	close(f.done)
	f.mu.Unlock()

	// Run continuations outside the lock so they may chain further.
	for _, fn := range waiters {
		fn(v, err)
	}
	return true
}

// OnSettle registers fn to run once the future settles.
// If the future has already settled, fn runs immediately.
func (f *Future[T]) OnSettle(fn func(T, error)) {
	f.mu.Lock()
	if !f.settled {
		f.waiters = append(f.waiters, fn)
		f.mu.Unlock()
		return
	}
	v, err := f.value, f.err
	f.mu.Unlock()
	fn(v, err)
}

// Notify implements Thenable.
func (f *Future[T]) Notify(fn func(any, error)) {
	f.OnSettle(func(v T, err error) {
		if err != nil {
			fn(nil, err)
			return
		}
		fn(v, nil)
	})
}

// Done returns a channel that is closed when the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has a value or an error.
func (f *Future[T]) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Value returns the outcome of a settled future.
// For a pending future it returns the zero value and ErrPending.
func (f *Future[T]) Value() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.settled {
		var zero T
		return zero, ErrPending
	}
	return f.value, f.err
}

// ErrPending is returned by Value when the future has not settled yet.
var ErrPending = errors.New("future is pending")

// Await blocks until the future settles or ctx is done.
// A done context only stops the wait; the underlying work is not cancelled.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then returns a future resolved with fn applied to f's value.
// Rejections propagate past fn untouched. A panic in fn rejects the result.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	next := New[U]()
	f.OnSettle(func(v T, err error) {
		if err != nil {
			next.Reject(err)
			return
		}
		u, err := call(fn, v)
		if err != nil {
			next.Reject(err)
			return
		}
		next.Resolve(u)
	})
	return next
}

// Chain is the monadic form of Then: fn returns a future whose outcome
// becomes the outcome of the returned future.
func Chain[T, U any](f *Future[T], fn func(T) *Future[U]) *Future[U] {
	next := New[U]()
	f.OnSettle(func(v T, err error) {
		if err != nil {
			next.Reject(err)
			return
		}
		inner, err := call(func(v T) (*Future[U], error) { return fn(v), nil }, v)
		if err != nil {
			next.Reject(err)
			return
		}
		if inner == nil {
			var zero U
			next.Resolve(zero)
			return
		}
		inner.OnSettle(func(u U, err error) {
			if err != nil {
				next.Reject(err)
				return
			}
			next.Resolve(u)
		})
	})
	return next
}

// call runs fn, converting a panic into an error.
func call[T, U any](fn func(T) (U, error), v T) (u U, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("continuation panic: %v", r)
		}
	}()
	return fn(v)
}
