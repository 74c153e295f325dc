package rill

import (
	"context"
	"sync"
)

// Scan maintains an accumulator of type A, seeded with init. On every
// Value it invokes f(acc, payload), which returns the updated
// accumulator and the Out value to emit with the incoming item's
// timestamp. Errors pass through without resetting the accumulator. If
// f panics while the accumulator's guard is held, the guard is
// recovered in place: the prior accumulator value is preserved, and a
// CallbackPanic error is emitted for that item instead of terminating
// the sequence.
func Scan[T, A, Out any](src Sequence[T], init A, f func(acc A, payload T) (A, Out), opts ...Option) Sequence[Out] {
	cfg := buildConfig(opts)
	var (
		mu  sync.Mutex
		acc = init
	)
	return SequenceFunc[Out](func(ctx context.Context) (Item[Out], bool) {
		it, ok := src.Next(ctx)
		if !ok {
			var zero Item[Out]
			return zero, false
		}
		if it.IsError() {
			err, _ := it.Err()
			return NewError[Out](err), true
		}
		v, _ := it.Ok()
		out, panicErr := applyScanStep(&mu, &acc, v, f)
		if panicErr != nil {
			cfg.Logger.Warn("scan: recovered panic in accumulator callback, accumulator preserved", panicErr)
			return NewError[Out](panicErr), true
		}
		return NewValue(out, it.Timestamp()), true
	})
}

// applyScanStep runs f under mu. A panic inside f is recovered without
// losing the previously-held accumulator value; it is reported back as
// a CallbackPanic error instead of propagating.
func applyScanStep[T, A, Out any](mu *sync.Mutex, acc *A, v T, f func(A, T) (A, Out)) (out Out, panicErr *Error) {
	mu.Lock()
	defer mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			panicErr = NewStreamError(CallbackPanic, formatRecovered(r))
		}
	}()
	newAcc, o := f(*acc, v)
	*acc = newAcc
	return o, nil
}
