package rill

import "fmt"

// Kind distinguishes the two arms of Item.
type Kind uint8

const (
	// KindValue marks an item carrying a payload and a timestamp.
	KindValue Kind = iota
	// KindError marks an item carrying a failure.
	KindError
)

func (k Kind) String() string {
	if k == KindValue {
		return "value"
	}
	return "error"
}

// Item is the tagged union flowing through every Sequence: it is either a
// Value (payload plus Timestamp) or an Error. Errors never carry a
// payload; values never carry an error.
type Item[T any] struct {
	kind  Kind
	value T
	ts    Timestamp
	err   error
}

// NewValue constructs a Value item.
func NewValue[T any](value T, ts Timestamp) Item[T] {
	return Item[T]{kind: KindValue, value: value, ts: ts}
}

// NewError constructs an Error item. Panics if err is nil: an Error item
// with no failure is a programmer error.
func NewError[T any](err error) Item[T] {
	if err == nil {
		panic("rill: NewError requires a non-nil error")
	}
	return Item[T]{kind: KindError, err: err}
}

// IsValue reports whether the item is the Value arm.
func (it Item[T]) IsValue() bool { return it.kind == KindValue }

// IsError reports whether the item is the Error arm.
func (it Item[T]) IsError() bool { return it.kind == KindError }

// Timestamp returns the item's timestamp. Only meaningful for Value items;
// returns nil for Error items.
func (it Item[T]) Timestamp() Timestamp { return it.ts }

// Err returns the active Error arm, if any.
func (it Item[T]) Err() (error, bool) {
	if it.kind == KindError {
		return it.err, true
	}
	return nil, false
}

// Ok returns the active Value arm, if any.
func (it Item[T]) Ok() (T, bool) {
	if it.kind == KindValue {
		return it.value, true
	}
	var zero T
	return zero, false
}

// Unwrap returns the Value payload, panicking with a diagnostic message if
// the item is an Error. This is the only panic path reserved for
// programmer error (e.g. in tests); library code never calls it on an
// item it hasn't checked with IsValue/IsError.
func (it Item[T]) Unwrap() T {
	if it.kind == KindError {
		panic(fmt.Sprintf("rill: Unwrap called on Error item: %v", it.err))
	}
	return it.value
}

// Expect is Unwrap with a caller-supplied panic message prefix.
func (it Item[T]) Expect(msg string) T {
	if it.kind == KindError {
		panic(fmt.Sprintf("rill: %s: %v", msg, it.err))
	}
	return it.value
}

// FromResult builds an Item from a plain (value, error) pair: a bijection
// with IntoResult for the Value arm, and for the Error arm yields an Error
// item (possibly with a distinct inner representation per Error's clone
// rule, see Clone).
func FromResult[T any](value T, err error, ts Timestamp) Item[T] {
	if err != nil {
		return NewError[T](err)
	}
	return NewValue(value, ts)
}

// IntoResult is the inverse of FromResult.
func (it Item[T]) IntoResult() (T, error) {
	if it.kind == KindError {
		var zero T
		return zero, it.err
	}
	return it.value, nil
}

// MapItem applies f to the payload of a Value item, producing an Item[U];
// it is the identity (modulo type) on Error items. Used to implement the
// Map operator, and available directly for item-level transforms.
func MapItem[T, U any](it Item[T], f func(T) U) Item[U] {
	if it.kind == KindError {
		return Item[U]{kind: KindError, err: it.err}
	}
	return Item[U]{kind: KindValue, value: f(it.value), ts: it.ts}
}

// AndThenItem chains a Value through f, which may itself produce an Error
// item; an incoming Error short-circuits without calling f.
func AndThenItem[T, U any](it Item[T], f func(T) Item[U]) Item[U] {
	if it.kind == KindError {
		return Item[U]{kind: KindError, err: it.err}
	}
	return f(it.value)
}

// CompareItems orders two items for sorting purposes only: it has no
// bearing on the emission order of any operator, which is governed by its
// own rules (see OrderedMerge). Errors sort strictly less than any value
// and are mutually equal for ordering purposes. Values compare by payload
// first (via less), then by Timestamp.
func CompareItems[T any](a, b Item[T], less func(x, y T) bool) int {
	if a.kind == KindError && b.kind == KindError {
		return 0
	}
	if a.kind == KindError {
		return -1
	}
	if b.kind == KindError {
		return 1
	}
	switch {
	case less(a.value, b.value):
		return -1
	case less(b.value, a.value):
		return 1
	}
	return a.ts.Compare(b.ts)
}

// String renders the item for diagnostics.
func (it Item[T]) String() string {
	if it.kind == KindError {
		return fmt.Sprintf("Error(%v)", it.err)
	}
	return fmt.Sprintf("Value(%v @ %v)", it.value, it.ts)
}
