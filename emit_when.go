package rill

import "context"

// EmitWhen gates source on filterStream: it caches the latest Value
// from each, and emits the current source Value iff predicate, applied
// to a 2-slot CombinedState of [source, filter], returns true. Either
// stream updating can trigger an evaluation. The emitted item carries
// the source payload with a timestamp drawn from whichever stream
// triggered the check (a source update uses the source timestamp, a
// filter update uses the filter timestamp). Both streams must have
// produced at least one Value before any emission. Errors on either
// side pass through immediately.
func EmitWhen[S, F any](source Sequence[S], filterStream Sequence[F], predicate func(source S, filter F) bool) Sequence[S] {
	var (
		haveSource, haveFilter bool
		lastSource             S
		lastFilter             F
	)
	merged := OrderedMergeAll(func(a, b any) bool { return false }, []Sequence[any]{Boxed(source), Boxed(filterStream)})

	return SequenceFunc[S](func(ctx context.Context) (Item[S], bool) {
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
			if indexed.SourceIndex == 0 {
				lastSource = indexed.Value.(S)
				haveSource = true
			} else {
				lastFilter = indexed.Value.(F)
				haveFilter = true
			}
			if !haveSource || !haveFilter {
				continue
			}
			if !predicate(lastSource, lastFilter) {
				continue
			}
			return NewValue(lastSource, it.Timestamp()), true
		}
	})
}
