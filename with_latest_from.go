package rill

import "context"

// WithLatestFrom is the one-sided variant of CombineLatest: emission is
// driven entirely by primary. On each primary Value, if secondary has
// produced at least one Value, selector(primary, latestSecondary) is
// emitted; otherwise the primary item is dropped. Secondary updates
// never trigger emission on their own. Errors from either side pass
// through unchanged.
func WithLatestFrom[P, S, Out any](primary Sequence[P], secondary Sequence[S], selector func(P, S) Out) Sequence[Out] {
	var (
		haveSecondary bool
		latest        S
	)
	boxedPrimary := Boxed(primary)
	boxedSecondary := Boxed(secondary)
	merged := OrderedMergeAll(func(a, b any) bool { return false }, []Sequence[any]{boxedPrimary, boxedSecondary})

	return SequenceFunc[Out](func(ctx context.Context) (Item[Out], bool) {
		for {
			it, ok := merged.Next(ctx)
			if !ok {
				var zero Item[Out]
				return zero, false
			}
			if it.IsError() {
				err, _ := it.Err()
				return NewError[Out](err), true
			}
			indexed := it.Unwrap()
			if indexed.SourceIndex == 1 {
				latest = indexed.Value.(S)
				haveSecondary = true
				continue
			}
			if !haveSecondary {
				continue
			}
			out := selector(indexed.Value.(P), latest)
			return NewValue(out, it.Timestamp()), true
		}
	})
}
