package rill

import "context"

// PreviousPair is the output of CombineWithPrevious: the last emitted
// Value alongside the newly arrived one. HasPrevious is false only for
// the first Value seen on this subscription, in which case Previous
// holds the zero value of T and must not be mistaken for a real prior
// payload.
type PreviousPair[T any] struct {
	Previous    T
	HasPrevious bool
	Current     T
}

// CombineWithPrevious maintains the last Value emitted and, on every
// Value, emits the {previous, current} pair before replacing previous
// with current. The first Value is emitted with HasPrevious false (there
// is no prior to pair it with). Errors pass through unchanged and do not
// update the cached previous value. The emitted pair's timestamp is the
// incoming item's timestamp.
func CombineWithPrevious[T any](src Sequence[T]) Sequence[PreviousPair[T]] {
	var (
		have bool
		last T
	)
	return SequenceFunc[PreviousPair[T]](func(ctx context.Context) (Item[PreviousPair[T]], bool) {
		it, ok := src.Next(ctx)
		if !ok {
			var zero Item[PreviousPair[T]]
			return zero, false
		}
		if it.IsError() {
			err, _ := it.Err()
			return NewError[PreviousPair[T]](err), true
		}
		v, _ := it.Ok()
		pair := PreviousPair[T]{Previous: last, HasPrevious: have, Current: v}
		have = true
		last = v
		return NewValue(pair, it.Timestamp()), true
	})
}
