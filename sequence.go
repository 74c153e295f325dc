package rill

import "context"

// Sequence is a pull-based, ordered source of Item[T] values. Operators
// compose by wrapping one Sequence in another; nothing runs until a
// driver (Subscribe, SubscribeLatest) or IntoChannel starts pulling.
//
// Next blocks until an item is available, ctx is canceled, or the
// sequence is exhausted. A false second return means the sequence has
// ended; callers must not call Next again afterward. Implementations
// are not required to be safe for concurrent calls to Next from
// multiple goroutines; callers own serialization.
type Sequence[T any] interface {
	Next(ctx context.Context) (Item[T], bool)
}

// SequenceFunc adapts a plain function to the Sequence interface.
type SequenceFunc[T any] func(ctx context.Context) (Item[T], bool)

// Next implements Sequence.
func (f SequenceFunc[T]) Next(ctx context.Context) (Item[T], bool) { return f(ctx) }

// FromChannel adapts a channel of items into a Sequence. The returned
// Sequence ends (Next returns false) when ch is closed or ctx is
// canceled; in the latter case it first surfaces one Timeout-classified
// Error item so the cancellation is observable downstream.
func FromChannel[T any](ch <-chan Item[T]) Sequence[T] {
	return &channelSequence[T]{ch: ch}
}

type channelSequence[T any] struct {
	ch   <-chan Item[T]
	done bool
}

func (s *channelSequence[T]) Next(ctx context.Context) (Item[T], bool) {
	if s.done {
		var zero Item[T]
		return zero, false
	}
	select {
	case it, ok := <-s.ch:
		if !ok {
			s.done = true
			var zero Item[T]
			return zero, false
		}
		return it, true
	case <-ctx.Done():
		s.done = true
		return NewError[T](WrapError(Timeout, "sequence canceled", ctx.Err())), true
	}
}

// IntoChannel drains s into a channel, running the pull loop in its own
// goroutine. The returned channel is closed once s ends or ctx is
// canceled. Useful at the boundary between the pull-based engine and
// channel-oriented code (e.g. feeding a select loop elsewhere).
func IntoChannel[T any](ctx context.Context, s Sequence[T]) <-chan Item[T] {
	out := make(chan Item[T])
	go func() {
		defer close(out)
		for {
			it, ok := s.Next(ctx)
			if !ok {
				return
			}
			select {
			case out <- it:
			case <-ctx.Done():
				return
			}
			if it.IsError() {
				// keep draining: a single error item does not necessarily end
				// the sequence, callers that want termination-on-error use
				// the Permanent() classification of the wrapped error.
			}
		}
	}()
	return out
}

// sliceSequence replays a fixed slice of items, then ends. Used mostly
// in tests and examples as a deterministic Sequence source.
type sliceSequence[T any] struct {
	items []Item[T]
	pos   int
}

// FromSlice constructs a Sequence that replays items in order and then
// ends.
func FromSlice[T any](items []Item[T]) Sequence[T] {
	return &sliceSequence[T]{items: items}
}

// Boxed erases T to any, the escape hatch the design notes call for at
// pipeline splice points where heterogeneous operator chains must be
// combined statically-typed (CombineLatest and the other multi-input
// operators take boxed inputs so a fixed number of source type
// parameters isn't required).
func Boxed[T any](src Sequence[T]) Sequence[any] {
	return SequenceFunc[any](func(ctx context.Context) (Item[any], bool) {
		it, ok := src.Next(ctx)
		if !ok {
			var zero Item[any]
			return zero, false
		}
		return MapItem(it, func(v T) any { return v }), true
	})
}

func (s *sliceSequence[T]) Next(ctx context.Context) (Item[T], bool) {
	if err := ctx.Err(); err != nil {
		var zero Item[T]
		return zero, false
	}
	if s.pos >= len(s.items) {
		var zero Item[T]
		return zero, false
	}
	it := s.items[s.pos]
	s.pos++
	return it, true
}
