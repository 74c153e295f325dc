package rill

import (
	"context"
	"sync"
)

// Partition splits src into two outputs by pred: Values for which pred
// is true go to the first output, the rest to the second. A single
// background routing task drains src once; an Error is duplicated to
// both outputs (this, and not single-side routing, is the confirmed
// intended behavior — see DESIGN.md), after which the task terminates.
// The task also stops when src terminates or when ctx is canceled.
// Both outputs preserve original timestamps.
//
// Each output is backed by its own unbounded queue rather than a
// shared channel, so the routing task never blocks on either consumer:
// an item is queued to its destination the instant it's classified,
// whether or not anything has read from the other output yet, or ever
// will. Draining only one output is supported usage, not a leak — see
// TestPartition_OneSideUnread.
func Partition[T any](ctx context.Context, src Sequence[T], pred func(T) bool) (Sequence[T], Sequence[T]) {
	trueQ := newPartitionQueue[T]()
	falseQ := newPartitionQueue[T]()

	go func() {
		defer trueQ.close()
		defer falseQ.close()
		for {
			it, ok := src.Next(ctx)
			if !ok {
				return
			}
			if it.IsError() {
				trueQ.push(it)
				falseQ.push(it)
				return
			}
			v, _ := it.Ok()
			if pred(v) {
				trueQ.push(it)
			} else {
				falseQ.push(it)
			}
		}
	}()

	return &partitionSequence[T]{q: trueQ}, &partitionSequence[T]{q: falseQ}
}

// partitionQueue is an unbounded, single-producer FIFO. push never
// blocks; pop blocks until an item is queued, the queue is closed with
// nothing left in it, or ctx is done.
type partitionQueue[T any] struct {
	mu     sync.Mutex
	items  []Item[T]
	closed bool
	notify chan struct{}
}

func newPartitionQueue[T any]() *partitionQueue[T] {
	return &partitionQueue[T]{notify: make(chan struct{}, 1)}
}

func (q *partitionQueue[T]) push(it Item[T]) {
	q.mu.Lock()
	q.items = append(q.items, it)
	q.mu.Unlock()
	q.wake()
}

func (q *partitionQueue[T]) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *partitionQueue[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *partitionQueue[T]) pop(ctx context.Context) (Item[T], bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			it := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return it, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			var zero Item[T]
			return zero, false
		}
		select {
		case <-q.notify:
		case <-ctx.Done():
			var zero Item[T]
			return zero, false
		}
	}
}

// partitionSequence adapts a partitionQueue to Sequence[T].
type partitionSequence[T any] struct {
	q *partitionQueue[T]
}

func (s *partitionSequence[T]) Next(ctx context.Context) (Item[T], bool) {
	return s.q.pop(ctx)
}
