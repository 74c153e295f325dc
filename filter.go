package rill

import "context"

// Filter drops Value items whose payload fails pred, pulling from src
// until one passes or src ends; Error items always pass through
// unchanged without consulting pred.
func Filter[T any](src Sequence[T], pred func(T) bool) Sequence[T] {
	return SequenceFunc[T](func(ctx context.Context) (Item[T], bool) {
		for {
			it, ok := src.Next(ctx)
			if !ok {
				var zero Item[T]
				return zero, false
			}
			if it.IsError() {
				return it, true
			}
			if v, _ := it.Ok(); pred(v) {
				return it, true
			}
		}
	})
}
