package pool

import "sync"

// dynamicPool is an unbounded pool of workers. It is a thin generic
// wrapper around sync.Pool.
type dynamicPool[T any] struct {
	p *sync.Pool
}

// NewDynamic constructs an unbounded Pool backed by sync.Pool.
func NewDynamic[T any](newFn func() T) Pool[T] {
	return &dynamicPool[T]{p: &sync.Pool{New: func() interface{} { return newFn() }}}
}

func (d *dynamicPool[T]) Get() T  { return d.p.Get().(T) }
func (d *dynamicPool[T]) Put(v T) { d.p.Put(v) }
