package rill

import "context"

// WindowByCount buffers Values into fixed-size slices of length n,
// emitting each full window with the timestamp of its last item. On
// upstream termination, any non-empty partial buffer is flushed as a
// final, shorter window. Errors clear the partial buffer and propagate
// immediately; the next Value starts a fresh window. Panics if n == 0.
func WindowByCount[T any](src Sequence[T], n int) Sequence[[]T] {
	if n == 0 {
		panic(ErrInvalidWindowSize)
	}
	buf := make([]T, 0, n)
	var lastTS Timestamp
	done := false
	return SequenceFunc[[]T](func(ctx context.Context) (Item[[]T], bool) {
		if done {
			var zero Item[[]T]
			return zero, false
		}
		for {
			it, ok := src.Next(ctx)
			if !ok {
				done = true
				if len(buf) == 0 {
					var zero Item[[]T]
					return zero, false
				}
				out := buf
				buf = nil
				return NewValue(out, lastTS), true
			}
			if it.IsError() {
				buf = buf[:0]
				err, _ := it.Err()
				return NewError[[]T](err), true
			}
			v, _ := it.Ok()
			buf = append(buf, v)
			lastTS = it.Timestamp()
			if len(buf) == n {
				out := buf
				buf = make([]T, 0, n)
				return NewValue(out, lastTS), true
			}
		}
	})
}
