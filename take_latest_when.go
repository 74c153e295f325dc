package rill

import "context"

// TakeLatestWhen samples source on trigger events. It maintains only
// the latest source Value; when triggerStream emits a Value for which
// predicate returns true, it emits the cached source Value (if any)
// with the trigger's timestamp. Trigger Values failing predicate are
// discarded. Source Values never trigger emission on their own. Errors
// on either side pass through immediately.
func TakeLatestWhen[S, Tr any](source Sequence[S], triggerStream Sequence[Tr], predicate func(Tr) bool) Sequence[S] {
	var (
		haveSource bool
		lastSource S
	)
	merged := OrderedMergeAll(func(a, b any) bool { return false }, []Sequence[any]{Boxed(source), Boxed(triggerStream)})

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
				continue
			}
			trigger := indexed.Value.(Tr)
			if !predicate(trigger) {
				continue
			}
			if !haveSource {
				continue
			}
			return NewValue(lastSource, it.Timestamp()), true
		}
	})
}
