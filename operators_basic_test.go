package rill

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMap_TransformsValuesPreservesTimestamps(t *testing.T) {
	src := FromSlice([]Item[int]{
		NewValue(1, ts(1)),
		NewValue(2, ts(2)),
	})
	out := Map[int, string](src, func(n int) string {
		if n == 1 {
			return "one"
		}
		return "two"
	})
	ctx := context.Background()

	it1, _ := out.Next(ctx)
	v1, _ := it1.Ok()
	require.Equal(t, "one", v1)
	require.Equal(t, ts(1), it1.Timestamp())

	it2, _ := out.Next(ctx)
	v2, _ := it2.Ok()
	require.Equal(t, "two", v2)
	require.Equal(t, ts(2), it2.Timestamp())
}

func TestMap_ErrorPassesThroughUnchanged(t *testing.T) {
	boom := errors.New("boom")
	src := FromSlice([]Item[int]{NewError[int](boom)})
	out := Map[int, string](src, func(int) string { return "unused" })
	it, ok := out.Next(context.Background())
	require.True(t, ok)
	require.True(t, it.IsError())
}

func TestFilter_DropsFailingPredicate(t *testing.T) {
	src := FromSlice([]Item[int]{
		NewValue(1, ts(1)),
		NewValue(2, ts(2)),
		NewValue(3, ts(3)),
	})
	out := Filter[int](src, func(n int) bool { return n%2 == 0 })
	ctx := context.Background()

	it, ok := out.Next(ctx)
	require.True(t, ok)
	v, _ := it.Ok()
	require.Equal(t, 2, v)

	_, ok = out.Next(ctx)
	require.False(t, ok)
}

func TestFilter_ErrorBypassesPredicate(t *testing.T) {
	boom := errors.New("boom")
	src := FromSlice([]Item[int]{NewError[int](boom)})
	out := Filter[int](src, func(int) bool { return false })
	it, ok := out.Next(context.Background())
	require.True(t, ok)
	require.True(t, it.IsError())
}

func TestTap_InvokesSideEffectAndForwards(t *testing.T) {
	src := FromSlice([]Item[int]{
		NewValue(1, ts(1)),
		NewValue(2, ts(2)),
	})
	var seen []int
	out := Tap[int](src, func(n int) { seen = append(seen, n) })
	ctx := context.Background()

	it1, _ := out.Next(ctx)
	v1, _ := it1.Ok()
	require.Equal(t, 1, v1)

	it2, _ := out.Next(ctx)
	v2, _ := it2.Ok()
	require.Equal(t, 2, v2)

	require.Equal(t, []int{1, 2}, seen)
}

func TestTap_SkipsErrorItems(t *testing.T) {
	boom := errors.New("boom")
	src := FromSlice([]Item[int]{NewError[int](boom)})
	var called bool
	out := Tap[int](src, func(int) { called = true })
	it, ok := out.Next(context.Background())
	require.True(t, ok)
	require.True(t, it.IsError())
	require.False(t, called)
}

type fixedRandom struct{ vals []float64 }

func (f *fixedRandom) Float64() float64 {
	v := f.vals[0]
	f.vals = f.vals[1:]
	return v
}

func TestSampleRatio_KeepsBelowRatioDropsAboveOrEqual(t *testing.T) {
	src := FromSlice([]Item[int]{
		NewValue(1, ts(1)),
		NewValue(2, ts(2)),
		NewValue(3, ts(3)),
	})
	rnd := &fixedRandom{vals: []float64{0.1, 0.9, 0.2}}
	out := SampleRatio[int](src, 0.5, rnd)
	ctx := context.Background()

	it1, ok := out.Next(ctx)
	require.True(t, ok)
	v1, _ := it1.Ok()
	require.Equal(t, 1, v1, "0.1 < 0.5 keeps the first value")

	it2, ok := out.Next(ctx)
	require.True(t, ok)
	v2, _ := it2.Ok()
	require.Equal(t, 3, v2, "0.9 >= 0.5 drops the second value, 0.2 < 0.5 keeps the third")

	_, ok = out.Next(ctx)
	require.False(t, ok)
}

func TestSampleRatio_ErrorAlwaysPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	src := FromSlice([]Item[int]{NewError[int](boom)})
	out := SampleRatio[int](src, 0, &fixedRandom{vals: []float64{1}})
	it, ok := out.Next(context.Background())
	require.True(t, ok)
	require.True(t, it.IsError())
}
