package rill

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitWhen_GatesOnBothStreamsSeeded(t *testing.T) {
	source := FromSlice([]Item[int]{
		NewValue(1, ts(1)),
		NewValue(2, ts(3)),
	})
	filter := FromSlice([]Item[bool]{
		NewValue(true, ts(2)),
	})
	out := EmitWhen[int, bool](source, filter, func(s int, f bool) bool { return f })
	ctx := context.Background()

	it, ok := out.Next(ctx)
	require.True(t, ok)
	v, _ := it.Ok()
	require.Equal(t, 1, v, "item 1 arrived before the filter was seeded; it emits only once the filter seeds")
	require.Equal(t, ts(2), it.Timestamp())

	it, ok = out.Next(ctx)
	require.True(t, ok)
	v, _ = it.Ok()
	require.Equal(t, 2, v)
	require.Equal(t, ts(3), it.Timestamp())

	_, ok = out.Next(ctx)
	require.False(t, ok)
}

// TestEmitWhen_FilterUpdateTriggersUsingFilterTimestamp checks that a
// filter update, once both streams are seeded, can itself trigger an
// evaluation (and re-emission of the last source value) carrying the
// filter item's own timestamp.
func TestEmitWhen_FilterUpdateTriggersUsingFilterTimestamp(t *testing.T) {
	source := FromSlice([]Item[int]{
		NewValue(1, ts(1)),
	})
	filter := FromSlice([]Item[bool]{
		NewValue(true, ts(2)),
		NewValue(true, ts(4)),
	})
	out := EmitWhen[int, bool](source, filter, func(s int, f bool) bool { return f })
	ctx := context.Background()

	it1, ok := out.Next(ctx)
	require.True(t, ok)
	v1, _ := it1.Ok()
	require.Equal(t, 1, v1)
	require.Equal(t, ts(2), it1.Timestamp())

	it2, ok := out.Next(ctx)
	require.True(t, ok)
	v2, _ := it2.Ok()
	require.Equal(t, 1, v2, "the source value is unchanged but the filter update re-triggers evaluation")
	require.Equal(t, ts(4), it2.Timestamp())
}

func TestEmitWhen_SourceNeverSeededNoEmission(t *testing.T) {
	source := FromSlice([]Item[int]{})
	filter := FromSlice([]Item[bool]{NewValue(true, ts(1))})
	out := EmitWhen[int, bool](source, filter, func(s int, f bool) bool { return f })
	_, ok := out.Next(context.Background())
	require.False(t, ok)
}
