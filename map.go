package rill

import "context"

// Map applies f to every Value payload of src, preserving timestamps;
// Error items pass through unchanged.
func Map[T, U any](src Sequence[T], f func(T) U) Sequence[U] {
	return SequenceFunc[U](func(ctx context.Context) (Item[U], bool) {
		it, ok := src.Next(ctx)
		if !ok {
			var zero Item[U]
			return zero, false
		}
		return MapItem(it, f), true
	})
}
