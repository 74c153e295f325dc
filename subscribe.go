package rill

import (
	"context"
	"time"

	"github.com/ygrebnov/rill/metrics"
)

// OnError is invoked by Subscribe for an Error item. Returning true
// tells the driver to keep pulling; false terminates the driver (the
// error is reported to the caller of Subscribe as its return value).
type OnError func(error) bool

// Subscribe drains src sequentially: for every Value it awaits
// onNext(payload, cancel) to completion before advancing. cancel is
// derived from ctx and is the same token the driver itself checks
// between items; calling it from inside onNext short-circuits the
// subscription — the next ctx check (and any ctx-aware call src.Next
// makes) observes it canceled. Errors call onError if supplied; if
// onError is nil, or returns false, the driver stops and returns that
// error (wrapped as a Subscription error unless it is already a rill
// *Error, which is returned as is). A
// panic inside onNext is recovered at this boundary and converted to a
// CallbackPanic error, handled exactly like any other Error item (it
// does not otherwise tear down the pipeline). WithMetricsProvider wires
// a Histogram recording each onNext call's wall-clock duration under
// metrics.CallbackLatencySeconds.
//
// A single recover() wraps the user-supplied callback, converting a
// panic into a reported error rather than crashing the driver goroutine.
func Subscribe[T any](ctx context.Context, src Sequence[T], onNext func(T, context.CancelFunc), onError OnError, opts ...Option) error {
	cfg := buildConfig(opts)
	latency := cfg.Metrics.Histogram(
		metrics.CallbackLatencySeconds,
		metrics.WithDescription("wall-clock duration of a single Subscribe onNext call"),
		metrics.WithUnit("s"),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for {
		if err := ctx.Err(); err != nil {
			return WrapError(Timeout, "subscribe canceled", err)
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
		start := time.Now()
		panicErr := invokeOnNext(onNext, v, cancel)
		latency.Record(time.Since(start).Seconds())
		if panicErr != nil {
			if onError != nil && onError(panicErr) {
				continue
			}
			return panicErr
		}
	}
}

// invokeOnNext calls onNext, recovering a panic into a CallbackPanic
// error instead of propagating it out of Subscribe/SubscribeLatest.
func invokeOnNext[T any](onNext func(T, context.CancelFunc), v T, cancel context.CancelFunc) (panicErr *Error) {
	defer func() {
		if r := recover(); r != nil {
			panicErr = NewStreamError(CallbackPanic, formatRecovered(r))
		}
	}()
	onNext(v, cancel)
	return nil
}
