package rill

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ygrebnov/rill/internal/pool"
	"github.com/ygrebnov/rill/metrics"
)

// Subject is the hot-multicast handle returned by Share: a single
// background driver task consumes the upstream once and broadcasts
// each item to every current subscriber, one dispatching goroutine
// feeding many logical consumers, using a fan-out-with-bounded-
// concurrency broadcast loop.
type Subject[T any] struct {
	mu       sync.Mutex
	subs     map[uint64]*subjectSubscriber[T]
	nextID   uint64
	closed   bool
	fanLimit int
	cancel   context.CancelFunc

	logger      Logger
	subscribers metrics.UpDownCounter
	targetsPool pool.Pool[[]*subjectSubscriber[T]]
}

type subjectSubscriber[T any] struct {
	ch chan Item[T]
}

// Share converts src into a hot Subject. The driver goroutine starts
// immediately and runs until ctx is canceled, src terminates, or src
// yields an Error (which is broadcast to every subscriber, after which
// the subject closes). WithFanoutLimit bounds how many subscriber
// sends run concurrently per broadcast (0, the default, means
// unbounded); WithLogger and WithMetricsProvider wire the usual
// lifecycle-notice and subscriber-count instrumentation.
func Share[T any](ctx context.Context, src Sequence[T], opts ...Option) *Subject[T] {
	cfg := buildConfig(opts)
	driveCtx, cancel := context.WithCancel(ctx)
	subj := &Subject[T]{
		subs:        make(map[uint64]*subjectSubscriber[T]),
		fanLimit:    cfg.FanoutLimit,
		cancel:      cancel,
		logger:      cfg.Logger,
		subscribers: cfg.Metrics.UpDownCounter(metrics.ShareSubscribers, metrics.WithDescription("current Share subscriber count"), metrics.WithUnit("1")),
		// Recycling the per-broadcast target-slice snapshot backs a
		// one-shot allocation (Get before use, Put when done, unbounded
		// growth via sync.Pool).
		targetsPool: pool.NewDynamic(func() []*subjectSubscriber[T] { return nil }),
	}
	subj.logger.Warn("share: driver starting", nil)
	go subj.drive(driveCtx, src)
	return subj
}

func (s *Subject[T]) drive(ctx context.Context, src Sequence[T]) {
	defer func() {
		s.logger.Warn("share: driver stopping", nil)
		s.closeAll()
	}()
	for {
		it, ok := src.Next(ctx)
		if !ok {
			return
		}
		s.broadcast(ctx, it)
		if it.IsError() {
			return
		}
	}
}

// broadcast fans it out to every current subscriber, at most fanLimit
// at a time (0 meaning no limit), via an errgroup, and returns once
// every send has completed or ctx is canceled.
func (s *Subject[T]) broadcast(ctx context.Context, it Item[T]) {
	s.mu.Lock()
	targets := s.targetsPool.Get()[:0]
	for _, sub := range s.subs {
		targets = append(targets, sub)
	}
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(context.Background())
	if s.fanLimit > 0 {
		g.SetLimit(s.fanLimit)
	}
	for _, sub := range targets {
		sub := sub
		g.Go(func() error {
			select {
			case sub.ch <- it:
			case <-ctx.Done():
			case <-gctx.Done():
			}
			return nil
		})
	}
	_ = g.Wait()
	s.targetsPool.Put(targets)
}

// Subscribe registers a new subscriber. Late subscribers see no
// history, only items broadcast after this call returns. Returns
// ErrSubjectClosed if the subject has already closed.
func (s *Subject[T]) Subscribe() (Sequence[T], func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, nil, ErrSubjectClosed
	}
	id := s.nextID
	s.nextID++
	sub := &subjectSubscriber[T]{ch: make(chan Item[T])}
	s.subs[id] = sub
	s.subscribers.Add(1)

	// unsubscribe only removes the subscriber from future broadcasts; it
	// deliberately does not close sub.ch, since a send to it may be
	// in-flight concurrently (broadcast snapshots targets without
	// holding the lock during the actual send) and closing a channel
	// with a concurrent sender would panic. Once removed, nothing sends
	// to it again, so its Sequence simply stops progressing.
	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			s.subscribers.Add(-1)
		}
	}
	return FromChannel[T](sub.ch), unsubscribe, nil
}

// SubscriberCount returns the number of currently registered
// subscribers. A subscriber stays counted until it unsubscribes or the
// subject closes; a subscriber that has stopped reading is not detected
// or removed.
func (s *Subject[T]) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close drops the shared handle: it cancels the driver task and closes
// the subject, same as the upstream terminating on its own.
func (s *Subject[T]) Close() {
	s.cancel()
}

func (s *Subject[T]) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, sub := range s.subs {
		close(sub.ch)
	}
	s.subscribers.Add(-int64(len(s.subs)))
	s.subs = nil
}
