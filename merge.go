package rill

import (
	"container/heap"
	"context"

	"github.com/ygrebnov/rill/internal/pool"
	"github.com/ygrebnov/rill/metrics"
)

// Indexed pairs a merged value with the 0-based index of the input
// sequence it came from, so multi-input operators built on OrderedMerge
// (combine_latest, with_latest_from, emit_when, take_latest_when,
// take_while_with) can route it back to the correct slot.
type Indexed[T any] struct {
	Value       T
	SourceIndex int
}

// OrderedMerge combines sources into a single time-ordered Sequence,
// following a must-wait emission rule: a pending value with timestamp t
// is only released once every still-active source has been observed at
// a timestamp at or past t, so nothing earlier can still be coming from
// it. A source satisfies this either by currently holding a pending
// item whose timestamp is, by the heap's own invariant, already at or
// past t, or by having previously produced an item at or past t and
// then gone quiet without terminating. A source that has not yet
// produced anything, and has not terminated, always blocks emission.
// less breaks ties between payloads carrying equal timestamps; if it
// also reports them equal, the lower source index wins. Error items
// bypass the must-wait rule entirely and are emitted the instant they
// arrive, since their relative ordering against other sources' values
// is not meaningful.
//
// Implemented with one worker goroutine per source feeding a shared
// arrivals channel; Next consumes it on the caller's goroutine and
// flushes in order from a container/heap min-heap of per-source
// pending items.
func OrderedMerge[T any](less func(a, b T) bool, sources ...Sequence[T]) Sequence[Indexed[T]] {
	return OrderedMergeAll(less, sources)
}

// OrderedMergeAll is OrderedMerge taking its sources as a slice, for
// fan-in over a dynamically sized collection of inputs. opts wires the
// ambient collaborators named in Config: a buffer size for the
// internal arrivals channel, a metrics.Provider that records live heap
// depth (queue depth), and WithErrorTagging to attach source-index and
// correlation-ID metadata (see error_tagging.go) to every error this
// merge emits.
func OrderedMergeAll[T any](less func(a, b T) bool, sources []Sequence[T], opts ...Option) Sequence[Indexed[T]] {
	cfg := buildConfig(opts)
	bufSize := cfg.MergeBufferSize
	if bufSize <= 0 {
		bufSize = len(sources)
	}
	m := &merger[T]{
		sources:  sources,
		less:     less,
		arrivals: make(chan arrival[T], bufSize),
		requests: make([]chan struct{}, len(sources)),
		has:      make([]bool, len(sources)),
		closed:   make([]bool, len(sources)),
		seen:     make([]bool, len(sources)),
		lastTS:   make([]Timestamp, len(sources)),
		active:   len(sources),
		h:        &itemHeap[T]{less: less},
		tagging:  cfg.ErrorTagging,
		depth:    cfg.Metrics.UpDownCounter(metrics.MergeQueueDepth, metrics.WithDescription("pending items held in the ordered-merge heap"), metrics.WithUnit("1")),
	}
	if len(sources) > 0 {
		m.nodes = pool.NewFixed(uint(len(sources)), func() *heapItem[T] { return &heapItem[T]{} })
	}
	for i := range sources {
		m.requests[i] = make(chan struct{}, 1)
	}
	m.started = false
	return m
}

type arrival[T any] struct {
	idx int
	it  Item[T]
	ok  bool
}

type merger[T any] struct {
	sources  []Sequence[T]
	less     func(a, b T) bool
	arrivals chan arrival[T]
	requests []chan struct{}

	has    []bool
	closed []bool
	active int

	// seen and lastTS hold each active source's watermark: whether it
	// has ever produced a value, and the timestamp of the last one,
	// kept even after that value is popped from the heap. A source
	// idle between requests still satisfies the must-wait rule for any
	// pending candidate whose timestamp it has already watermarked.
	seen   []bool
	lastTS []Timestamp

	h     *itemHeap[T]
	nodes pool.Pool[*heapItem[T]]

	tagging bool
	depth   metrics.UpDownCounter

	started bool
	ended   bool
}

func (m *merger[T]) startWorkers(ctx context.Context) {
	for i, src := range m.sources {
		i, src := i, src
		go func() {
			for range m.requests[i] {
				it, ok := src.Next(ctx)
				m.arrivals <- arrival[T]{idx: i, it: it, ok: ok}
				if !ok {
					return
				}
			}
		}()
		m.requests[i] <- struct{}{}
	}
	m.started = true
}

func (m *merger[T]) requestNext(i int) {
	if m.closed[i] {
		return
	}
	select {
	case m.requests[i] <- struct{}{}:
	default:
	}
}

// readyToEmit reports whether the heap's minimum is safe to pop under
// the must-wait rule. A still-active source that currently holds a
// pending item trivially satisfies the rule (its timestamp is, by the
// heap invariant, already at or past the candidate's). A still-active
// source with nothing pending right now must instead have watermarked
// a timestamp at or past the candidate's through an earlier item; one
// that has never produced anything blocks emission outright.
func (m *merger[T]) readyToEmit() bool {
	top := m.h.Peek()
	for i := range m.sources {
		if m.closed[i] || m.has[i] {
			continue
		}
		if !m.seen[i] {
			return false
		}
		if m.lastTS[i].Compare(top.it.Timestamp()) < 0 {
			return false
		}
	}
	return true
}

// Next implements Sequence[Indexed[T]].
func (m *merger[T]) Next(ctx context.Context) (Item[Indexed[T]], bool) {
	if m.ended {
		var zero Item[Indexed[T]]
		return zero, false
	}
	if !m.started {
		if len(m.sources) == 0 {
			m.ended = true
			var zero Item[Indexed[T]]
			return zero, false
		}
		m.startWorkers(ctx)
	}

	for {
		if m.h.Len() > 0 && m.readyToEmit() {
			hi := heap.Pop(m.h).(*heapItem[T])
			m.depth.Add(-1)
			idx, it := hi.idx, hi.it
			m.has[idx] = false
			m.nodes.Put(hi)
			m.requestNext(idx)
			return NewValue(Indexed[T]{Value: it.Unwrap(), SourceIndex: idx}, it.Timestamp()), true
		}
		if m.active == 0 {
			m.ended = true
			var zero Item[Indexed[T]]
			return zero, false
		}

		select {
		case <-ctx.Done():
			m.ended = true
			return NewError[Indexed[T]](WrapError(Timeout, "ordered merge canceled", ctx.Err())), true
		case a := <-m.arrivals:
			if !a.ok {
				if !m.closed[a.idx] {
					m.closed[a.idx] = true
					m.active--
				}
				continue
			}
			if a.it.IsError() {
				err, _ := a.it.Err()
				if m.tagging {
					err = taggedWithSource(err, a.idx)
				}
				m.requestNext(a.idx)
				return NewError[Indexed[T]](err), true
			}
			node := m.nodes.Get()
			node.it = a.it
			node.idx = a.idx
			m.has[a.idx] = true
			m.seen[a.idx] = true
			m.lastTS[a.idx] = a.it.Timestamp()
			heap.Push(m.h, node)
			m.depth.Add(1)
		}
	}
}

// heapItem is a pending value paired with its originating source index,
// the unit stored in itemHeap. Recycled through merger.nodes rather than
// allocated fresh per arrival.
type heapItem[T any] struct {
	it  Item[T]
	idx int
}

// itemHeap is a container/heap min-heap over heapItem, ordered by
// timestamp, then by the caller-supplied less on payload, then by
// source index.
type itemHeap[T any] struct {
	items []*heapItem[T]
	less  func(a, b T) bool
}

func (h *itemHeap[T]) Len() int { return len(h.items) }

// Peek returns the current minimum without removing it. Valid only
// when Len() > 0.
func (h *itemHeap[T]) Peek() *heapItem[T] { return h.items[0] }

// Less orders pending heapItems by timestamp first (the merge's primary
// ordering key), then by payload via the caller-supplied less, then by
// source index. This is deliberately not CompareItems, whose payload-
// first ordering is documented as a general sort and not the emission
// order any operator uses.
func (h *itemHeap[T]) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	switch a.it.Timestamp().Compare(b.it.Timestamp()) {
	case -1:
		return true
	case 1:
		return false
	}
	av, bv := a.it.Unwrap(), b.it.Unwrap()
	switch {
	case h.less(av, bv):
		return true
	case h.less(bv, av):
		return false
	default:
		return a.idx < b.idx
	}
}

func (h *itemHeap[T]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *itemHeap[T]) Push(x interface{}) {
	h.items = append(h.items, x.(*heapItem[T]))
}

func (h *itemHeap[T]) Pop() interface{} {
	old := h.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	h.items = old[:n-1]
	return it
}
