package rill

import (
	"context"
	"sync"
	"time"

	"github.com/ygrebnov/rill/metrics"
)

// SubscribeLatest drains src with single-in-flight coalescing: a new
// Value overwrites any pending, not-yet-started Value (intermediate
// items are discarded) rather than queuing. At most one onNext call
// runs at a time, in its own goroutine; when it finishes, the driver
// takes whatever Value is currently pending (if any) and starts the
// next call, looping until nothing is pending, at which point it goes
// idle again. Error items are delivered inline, immediately, the same
// as Subscribe; they do not participate in the pending/coalescing
// scheme. cancel, passed into every onNext call, is the same token the
// driver checks between items and between coalesced calls; calling it
// stops the processing loop after the in-flight onNext returns and
// drops whatever is pending, rather than starting another call. A
// panic inside onNext is recovered and converted to a CallbackPanic
// error that is passed to onError when one is supplied; unlike an Error
// item, onError's return value is ignored for it and it never stops the
// driver.
// SubscribeLatest blocks until src ends, ctx is canceled, or onError
// rejects an error, and in every case waits for the in-flight onNext
// call to finish before returning, so callers observe quiescence.
//
// State machine:
// Idle --value--> Processing(spawn); Processing --value--> Processing
// (pending=value, coalesced); Processing --task done, pending empty-->
// Idle; Processing --task done, pending set--> Processing(continue with
// pending); any --cancel--> terminating (stop loop, drop pending).
// WithMetricsProvider wires a Histogram recording each onNext call's
// wall-clock duration under metrics.CallbackLatencySeconds, same as
// Subscribe, so the two drivers land comparable measurements under one
// instrument name regardless of which one a pipeline uses.
func SubscribeLatest[T any](ctx context.Context, src Sequence[T], onNext func(T, context.CancelFunc), onError OnError, opts ...Option) error {
	cfg := buildConfig(opts)
	latency := cfg.Metrics.Histogram(
		metrics.CallbackLatencySeconds,
		metrics.WithDescription("wall-clock duration of a single SubscribeLatest onNext call"),
		metrics.WithUnit("s"),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	state := &latestState[T]{latency: latency}
	defer state.wait()

	for {
		if err := ctx.Err(); err != nil {
			return WrapError(Timeout, "subscribe_latest canceled", err)
		}
		it, ok := src.Next(ctx)
		if !ok {
			return nil
		}
		if it.IsError() {
			err, _ := it.Err()
			if onError != nil && onError(err) {
				continue
			}
			if re, isRill := err.(*Error); isRill {
				return re
			}
			return WrapError(Subscription, "unhandled error from subscribed sequence", err)
		}
		v, _ := it.Ok()
		state.submit(ctx, v, onNext, onError, cancel)
	}
}

// latestState is the shared {pending, isProcessing} slot guarding
// coalesced delivery, protected by a mutex.
type latestState[T any] struct {
	mu           sync.Mutex
	pending      T
	hasPending   bool
	isProcessing bool
	wg           sync.WaitGroup
	latency      metrics.Histogram
}

// submit implements the Idle/Processing transitions: when idle, hand v
// straight to a new processing task; otherwise overwrite pending.
func (s *latestState[T]) submit(
	ctx context.Context,
	v T,
	onNext func(T, context.CancelFunc),
	onError OnError,
	cancel context.CancelFunc,
) {
	s.mu.Lock()
	spawn := !s.isProcessing
	if spawn {
		s.isProcessing = true
	} else {
		s.pending = v
		s.hasPending = true
	}
	s.mu.Unlock()

	if !spawn {
		return
	}
	s.wg.Add(1)
	go s.run(ctx, v, onNext, onError, cancel)
}

// run is the single processing task: invoke onNext with v, then keep
// taking pending and invoking onNext until pending is empty or ctx is
// canceled, then go idle. A panic inside onNext is recovered and
// reported through onError (if supplied) rather than crashing this
// goroutine.
func (s *latestState[T]) run(
	ctx context.Context,
	v T,
	onNext func(T, context.CancelFunc),
	onError OnError,
	cancel context.CancelFunc,
) {
	defer s.wg.Done()
	for {
		start := time.Now()
		panicErr := invokeOnNext(onNext, v, cancel)
		s.latency.Record(time.Since(start).Seconds())
		if panicErr != nil && onError != nil {
			onError(panicErr)
		}

		s.mu.Lock()
		if ctx.Err() != nil || !s.hasPending {
			s.hasPending = false
			s.isProcessing = false
			s.mu.Unlock()
			return
		}
		v = s.pending
		s.hasPending = false
		s.mu.Unlock()
	}
}

// wait blocks until any in-flight processing task finishes, giving
// callers a quiescence point on driver exit.
func (s *latestState[T]) wait() { s.wg.Wait() }
