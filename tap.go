package rill

import "context"

// Tap invokes fn as a side effect on every Value payload and forwards
// the item unchanged; Error items pass through without invoking fn. fn
// must not mutate the payload it's given. If fn panics, Tap recovers
// the panic and yields a CallbackPanic Error item in place of that
// Value; the drivers then handle it like any other Error item, and
// later items keep flowing.
func Tap[T any](src Sequence[T], fn func(T)) Sequence[T] {
	return SequenceFunc[T](func(ctx context.Context) (Item[T], bool) {
		it, ok := src.Next(ctx)
		if !ok {
			var zero Item[T]
			return zero, false
		}
		if v, isValue := it.Ok(); isValue {
			var panicErr *Error
			func() {
				defer func() {
					if r := recover(); r != nil {
						panicErr = NewStreamError(CallbackPanic, formatRecovered(r))
					}
				}()
				fn(v)
			}()
			if panicErr != nil {
				return NewError[T](panicErr), true
			}
		}
		return it, true
	})
}
