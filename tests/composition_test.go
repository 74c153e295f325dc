package tests

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/rill"
	"github.com/ygrebnov/rill/clock"
)

type compositionTS int

func (t compositionTS) Compare(other rill.Timestamp) int {
	o := other.(compositionTS)
	switch {
	case t < o:
		return -1
	case t > o:
		return 1
	default:
		return 0
	}
}

func (t compositionTS) String() string { return fmt.Sprintf("%d", int(t)) }

func values(vs ...int) []rill.Item[int] {
	items := make([]rill.Item[int], len(vs))
	for i, v := range vs {
		items[i] = rill.NewValue(v, compositionTS(i))
	}
	return items
}

// TestTapAfterFilter_OnlyObservesSurvivors mirrors the originating
// library's tap_after_filter_ordered composition scenario: Tap placed
// downstream of Filter only fires for items the filter let through.
func TestTapAfterFilter_OnlyObservesSurvivors(t *testing.T) {
	ctx := context.Background()
	src := rill.FromSlice(values(1, 2, 3, 4, 5, 6))

	var seen []int
	piped := rill.Tap(
		rill.Filter(src, func(v int) bool { return v%2 == 0 }),
		func(v int) { seen = append(seen, v) },
	)

	var out []int
	for {
		it, ok := piped.Next(ctx)
		if !ok {
			break
		}
		v, _ := it.Ok()
		out = append(out, v)
	}

	require.Equal(t, []int{2, 4, 6}, out)
	require.Equal(t, []int{2, 4, 6}, seen)
}

// TestTapBeforeFilter_ObservesEverything mirrors the counterpart
// scenario: Tap upstream of Filter sees every item, filtered or not.
func TestTapBeforeFilter_ObservesEverything(t *testing.T) {
	ctx := context.Background()
	src := rill.FromSlice(values(1, 2, 3, 4, 5, 6))

	var seen []int
	piped := rill.Filter(
		rill.Tap(src, func(v int) { seen = append(seen, v) }),
		func(v int) bool { return v%2 == 0 },
	)

	for {
		_, ok := piped.Next(ctx)
		if !ok {
			break
		}
	}

	require.Equal(t, []int{1, 2, 3, 4, 5, 6}, seen)
}

// TestMapThenWindowByCountThenScan chains three operators end to end,
// the way a real pipeline composes them: Map doubles each payload,
// WindowByCount batches in threes, Scan accumulates a running total of
// window sums across the whole sequence.
func TestMapThenWindowByCountThenScan(t *testing.T) {
	ctx := context.Background()
	src := rill.FromSlice(values(1, 2, 3, 4, 5, 6, 7))

	doubled := rill.Map(src, func(v int) int { return v * 2 })
	windows := rill.WindowByCount(doubled, 3)
	totals := rill.Scan(windows, 0, func(acc int, w []int) (int, int) {
		sum := 0
		for _, v := range w {
			sum += v
		}
		return acc + sum, acc + sum
	})

	var out []int
	for {
		it, ok := totals.Next(ctx)
		if !ok {
			break
		}
		v, _ := it.Ok()
		out = append(out, v)
	}

	// windows: [2 4 6]=12, [8 10 12]=30, [14]=14
	// running totals: 12, 42, 56
	require.Equal(t, []int{12, 42, 56}, out)
}

// TestDistinctUntilChangedAfterMap confirms a dedup stage placed after a
// Map stage sees the mapped values, not the originals, so items that
// differ before mapping but collide after it are still collapsed.
func TestDistinctUntilChangedAfterMap(t *testing.T) {
	ctx := context.Background()
	src := rill.FromSlice(values(1, 11, 2, 12, 3))

	parityCoded := rill.Map(src, func(v int) int { return v % 10 })
	deduped := rill.DistinctUntilChanged(parityCoded, clock.NewSequenceClock())

	var out []int
	for {
		it, ok := deduped.Next(ctx)
		if !ok {
			break
		}
		v, _ := it.Ok()
		out = append(out, v)
	}

	require.Equal(t, []int{1, 2, 3}, out)
}

// TestOrderedMergeThenCombineLatest composes the core fan-in primitive
// with CombineLatest: two already-ordered sources are interleaved, the
// Indexed wrapper is unwrapped back to a flat int sequence, and that
// sequence is combined with an independent ticks sequence, exercising
// CombinedState's snapshot semantics end to end.
func TestOrderedMergeThenCombineLatest(t *testing.T) {
	ctx := context.Background()

	odds := rill.FromSlice([]rill.Item[int]{
		rill.NewValue(1, compositionTS(1)),
		rill.NewValue(3, compositionTS(3)),
	})
	evens := rill.FromSlice([]rill.Item[int]{
		rill.NewValue(2, compositionTS(2)),
		rill.NewValue(4, compositionTS(4)),
	})

	merged := rill.OrderedMerge(func(a, b int) bool { return a < b }, odds, evens)
	flat := rill.Map(merged, func(idx rill.Indexed[int]) any { return idx.Value })

	ticks := rill.FromSlice([]rill.Item[any]{
		rill.NewValue[any]("tick", compositionTS(1)),
		rill.NewValue[any]("tick", compositionTS(5)),
	})

	combined := rill.CombineLatest(nil, flat, ticks)

	var snapshots int
	for {
		it, ok := combined.Next(ctx)
		if !ok {
			break
		}
		state, _ := it.Ok()
		if state.Complete() {
			snapshots++
		}
	}

	require.Greater(t, snapshots, 0)
}
