package rill

import "context"

// TakeWhileWith conditionally terminates source based on filterStream.
// For each source Value, ordered (via the merge primitive) relative to
// filterStream values: if no filter value has arrived yet, the source
// item is dropped; otherwise predicate is applied to the latest filter
// payload — true emits the source item, false permanently terminates
// the downstream sequence, even if the filter later becomes true again.
// Errors are emitted immediately and never trigger termination.
func TakeWhileWith[S, F any](source Sequence[S], filterStream Sequence[F], predicate func(F) bool) Sequence[S] {
	var (
		haveFilter bool
		lastFilter F
		terminated bool
	)
	merged := OrderedMergeAll(func(a, b any) bool { return false }, []Sequence[any]{Boxed(source), Boxed(filterStream)})

	return SequenceFunc[S](func(ctx context.Context) (Item[S], bool) {
		if terminated {
			var zero Item[S]
			return zero, false
		}
		for {
			it, ok := merged.Next(ctx)
			if !ok {
				var zero Item[S]
				return zero, false
			}
			if it.IsError() {
				err, _ := it.Err()
				return NewError[S](err), true
			}
			indexed := it.Unwrap()
			if indexed.SourceIndex == 1 {
				lastFilter = indexed.Value.(F)
				haveFilter = true
				continue
			}
			if !haveFilter {
				continue
			}
			if !predicate(lastFilter) {
				terminated = true
				var zero Item[S]
				return zero, false
			}
			return NewValue(indexed.Value.(S), it.Timestamp()), true
		}
	})
}
