package rill

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/rill/metrics"
)

// TestSubscribeLatest_CoalescesArrivalsDuringSlowCallback covers five
// arrivals, four of them during a single slow onNext call, coalescing
// down to two invocations, the first and the last.
func TestSubscribeLatest_CoalescesArrivalsDuringSlowCallback(t *testing.T) {
	ch := make(chan Item[int])
	src := FromChannel[int](ch)

	var (
		mu    sync.Mutex
		calls []int
	)
	release := make(chan struct{})
	onNext := func(v int, _ context.CancelFunc) {
		mu.Lock()
		calls = append(calls, v)
		mu.Unlock()
		<-release
	}

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- SubscribeLatest[int](ctx, src, onNext, nil) }()

	ch <- NewValue(1, ts(1))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 1
	}, time.Second, time.Millisecond)

	// These four arrive while onNext(1) is still in flight; all but
	// the last (5) must be discarded, never individually invoked.
	ch <- NewValue(2, ts(2))
	ch <- NewValue(3, ts(3))
	ch <- NewValue(4, ts(4))
	ch <- NewValue(5, ts(5))

	release <- struct{}{} // let onNext(1) return

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 2
	}, time.Second, time.Millisecond)

	mu.Lock()
	require.Equal(t, []int{1, 5}, calls)
	mu.Unlock()

	release <- struct{}{} // let onNext(5) return
	close(ch)

	err := <-done
	require.NoError(t, err)
}

// TestSubscribeLatest_NoOverlappingCalls covers invariant 8: at most
// one onNext call is ever running at a time.
func TestSubscribeLatest_NoOverlappingCalls(t *testing.T) {
	ch := make(chan Item[int])
	src := FromChannel[int](ch)

	var (
		mu        sync.Mutex
		running   int
		maxSeen   int
		callCount int
	)
	onNext := func(int, context.CancelFunc) {
		mu.Lock()
		running++
		if running > maxSeen {
			maxSeen = running
		}
		callCount++
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		running--
		mu.Unlock()
	}

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- SubscribeLatest[int](ctx, src, onNext, nil) }()

	for i := 0; i < 10; i++ {
		ch <- NewValue(i, ts(i+1))
	}
	close(ch)
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, maxSeen, "no two onNext calls may overlap")
	require.GreaterOrEqual(t, callCount, 1)
	require.LessOrEqual(t, callCount, 10)
}

func TestSubscribeLatest_ErrorDeliveredInlineNotCoalesced(t *testing.T) {
	boom := errors.New("boom")
	src := FromSlice([]Item[int]{
		NewValue(1, ts(1)),
		NewError[int](boom),
		NewValue(2, ts(2)),
	})
	var mu sync.Mutex
	var got []int
	var errs int
	err := SubscribeLatest[int](context.Background(), src, func(v int, _ context.CancelFunc) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	}, func(error) bool {
		mu.Lock()
		errs++
		mu.Unlock()
		return true
	})
	require.NoError(t, err)
	require.Equal(t, 1, errs)
	require.Equal(t, []int{1, 2}, got)
}

func TestSubscribeLatest_CallbackPanicRoutedThroughOnError(t *testing.T) {
	src := FromSlice([]Item[int]{NewValue(1, ts(1))})
	var recovered int
	err := SubscribeLatest[int](context.Background(), src, func(int, context.CancelFunc) {
		panic("kaboom")
	}, func(err error) bool {
		recovered++
		var rerr *Error
		require.True(t, errors.As(err, &rerr))
		require.Equal(t, CallbackPanic, rerr.Kind())
		return true
	})
	require.NoError(t, err)
	require.Equal(t, 1, recovered)
}

// TestSubscribeLatest_CancelFromWithinCallback: calling cancel from
// inside onNext must stop the processing loop after the current call
// returns, dropping anything coalesced underneath it, rather than
// starting another onNext call.
func TestSubscribeLatest_CancelFromWithinCallback(t *testing.T) {
	ch := make(chan Item[int])
	src := FromChannel[int](ch)

	var (
		mu    sync.Mutex
		calls []int
	)
	onNext := func(v int, cancel context.CancelFunc) {
		mu.Lock()
		calls = append(calls, v)
		mu.Unlock()
		if v == 1 {
			cancel()
		}
	}

	done := make(chan error, 1)
	go func() { done <- SubscribeLatest[int](context.Background(), src, onNext, nil) }()

	ch <- NewValue(1, ts(1))
	err := <-done
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1}, calls, "canceling inside onNext must drop anything still pending and stop the loop")
}

// TestSubscribeLatest_RecordsCallbackLatency: WithMetricsProvider wires
// the same CallbackLatencySeconds instrument Subscribe uses, observing
// one measurement per onNext call actually run (not per arrival).
func TestSubscribeLatest_RecordsCallbackLatency(t *testing.T) {
	provider := metrics.NewBasicProvider()
	src := FromSlice([]Item[int]{NewValue(1, ts(1))})
	err := SubscribeLatest[int](context.Background(), src, func(int, context.CancelFunc) {}, nil, WithMetricsProvider(provider))
	require.NoError(t, err)

	h := provider.Histogram(metrics.CallbackLatencySeconds).(*metrics.BasicHistogram)
	require.Equal(t, int64(1), h.Snapshot().Count)
}
