// Package rill provides a composable algebra of operators over
// asynchronous, pull-based sequences of timestamped items.
//
// Every sequence carries items that are either a Value (a payload plus a
// timestamp) or an Error (a classified, chainable failure, see Kind).
// Operators consume one or more upstream sequences and produce a
// downstream sequence, preserving a defined temporal ordering across
// merges and combinations.
//
// Core types
//   - Item[T]: the Value/Error sum type flowing through every sequence.
//   - Sequence[T]: a pull-based source of Item[T], drained via Next.
//   - Timestamp: the ordering contract every Value carries; see package
//     rill/clock for concrete implementations (SequenceTimestamp,
//     WallTimestamp) and the clocks that mint them.
//
// Operators
// Single-input: Map, Filter, Tap, CombineWithPrevious, Scan,
// DistinctUntilChanged, DistinctUntilChangedBy, WindowByCount, Partition,
// Share, SampleRatio.
//
// Multi-input, built on OrderedMerge: CombineLatest, WithLatestFrom,
// EmitWhen, TakeLatestWhen, TakeWhileWith, OrderedMergeAll.
//
// Drivers
// Subscribe (sequential) and SubscribeLatest (single-in-flight,
// coalescing) drain a terminal sequence; both accept a cancellation
// context and an optional error handler.
//
// Channel lifecycle
// FromChannel/IntoChannel are the adapters to the channel collaborator.
// The library does not close caller-supplied channels; sequences signal
// their own termination through Sequence.Next's second return value.
package rill
