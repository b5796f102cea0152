package jsbridge

import (
	eventloop "github.com/joeycumines/go-eventloop"
)

// Result is the explicitly tagged outcome of a [Callable]: either an
// immediate value, or a deferred [Future] that settles later.
type Result struct {
	value  any
	future Future
}

// Future is a value that settles at most once, after which exactly one of
// the continuations passed to Then is expected to be called.
type Future interface {
	Then(onFulfilled func(value any), onRejected func(reason any))
}

// FutureFunc adapts a function to [Future].
type FutureFunc func(onFulfilled func(value any), onRejected func(reason any))

// Then implements [Future].
func (f FutureFunc) Then(onFulfilled func(value any), onRejected func(reason any)) {
	f(onFulfilled, onRejected)
}

// Immediate returns a synchronous [Result].
func Immediate(value any) Result {
	return Result{value: value}
}

// Deferred returns an asynchronous [Result]. A nil future is treated as
// Immediate(nil).
func Deferred(future Future) Result {
	return Result{future: future}
}

// IsDeferred reports whether the result carries a [Future].
func (r Result) IsDeferred() bool {
	return r.future != nil
}

// Value returns the immediate value, nil if deferred.
func (r Result) Value() any {
	return r.value
}

// Future returns the deferred value, nil if immediate.
func (r Result) Future() Future {
	return r.future
}

// FromPromise adapts an [eventloop.ChainedPromise] to [Future]. The
// continuations run on the promise's loop, as microtasks.
func FromPromise(p *eventloop.ChainedPromise) Future {
	return promiseFuture{p}
}

type promiseFuture struct {
	p *eventloop.ChainedPromise
}

func (x promiseFuture) Then(onFulfilled func(value any), onRejected func(reason any)) {
	x.p.Then(
		func(value any) any {
			onFulfilled(value)
			return nil
		},
		func(reason any) any {
			onRejected(reason)
			return nil
		},
	)
}
