package rill

import "context"

// CombinedState is the per-input cache maintained by combine_latest and
// its relatives: Values indexed by source position, and which
// positions have been filled at least once.
type CombinedState struct {
	Values []any
	filled []bool
	total  int
}

// NewCombinedState constructs an empty state for n inputs.
func NewCombinedState(n int) *CombinedState {
	return &CombinedState{Values: make([]any, n), filled: make([]bool, n)}
}

// Complete reports whether every input has contributed at least one
// Value.
func (c *CombinedState) Complete() bool { return c.total == len(c.filled) }

func (c *CombinedState) set(idx int, v any) {
	if !c.filled[idx] {
		c.filled[idx] = true
		c.total++
	}
	c.Values[idx] = v
}

// clone returns a shallow copy of Values, safe for a caller to retain
// across subsequent updates to c.
func (c *CombinedState) clone() []any {
	out := make([]any, len(c.Values))
	copy(out, c.Values)
	return out
}

// CombineLatest merges k inputs (boxed to `any` internally via
// OrderedMerge's Indexed wrapper) and emits a CombinedState whenever any
// input produces a new Value and every input has produced at least one
// Value. The state's source-index layout is fixed from the moment of
// first completeness. Its timestamp is that of the most recently
// arrived contribution. post is applied to each emitted state as a
// filter; Errors always pass through, bypassing post entirely.
//
// Grounded on the ordered-merge primitive: CombineLatest interleaves
// the inputs via OrderedMergeAll and updates the cache slot named by
// the merge's Indexed.SourceIndex.
func CombineLatest(post func(*CombinedState) bool, sources ...Sequence[any]) Sequence[CombinedState] {
	merged := OrderedMergeAll(func(a, b any) bool { return false }, sources)
	state := NewCombinedState(len(sources))
	return SequenceFunc[CombinedState](func(ctx context.Context) (Item[CombinedState], bool) {
		for {
			it, ok := merged.Next(ctx)
			if !ok {
				var zero Item[CombinedState]
				return zero, false
			}
			if it.IsError() {
				err, _ := it.Err()
				return NewError[CombinedState](err), true
			}
			idx := it.Unwrap()
			state.set(idx.SourceIndex, idx.Value)
			if !state.Complete() {
				continue
			}
			snapshot := &CombinedState{Values: state.clone(), total: state.total, filled: append([]bool(nil), state.filled...)}
			if post != nil && !post(snapshot) {
				continue
			}
			return NewValue(*snapshot, it.Timestamp()), true
		}
	})
}
