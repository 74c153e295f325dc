package rill

import "context"

// DistinctUntilChanged emits a Value only when it differs, by ==
// comparison, from the last emitted Value; the very first Value is
// always emitted. Errors pass through and do not update the cache, so a
// duplicate seen right after an error is still filtered. Emitted items
// receive a fresh timestamp from clk, since the original timestamp of a
// filtered run is no longer representative of "when this value became
// current."
func DistinctUntilChanged[T comparable](src Sequence[T], clk Clock) Sequence[T] {
	var (
		have bool
		last T
	)
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
			v, _ := it.Ok()
			if have && v == last {
				continue
			}
			have = true
			last = v
			return NewValue(v, clk.Now()), true
		}
	})
}

// DistinctUntilChangedBy is DistinctUntilChanged with a caller-supplied
// equivalence predicate (eq(a, b) == true means "same, filter") instead
// of ==. Unlike DistinctUntilChanged, the incoming item's own timestamp
// is preserved on emission; this divergence is deliberate (see
// DistinctUntilChanged).
func DistinctUntilChangedBy[T any](src Sequence[T], eq func(a, b T) bool) Sequence[T] {
	var (
		have bool
		last T
	)
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
			v, _ := it.Ok()
			if have && eq(last, v) {
				continue
			}
			have = true
			last = v
			return it, true
		}
	})
}
