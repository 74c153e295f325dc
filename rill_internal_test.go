package rill

import "fmt"

// testTS is a plain integer Timestamp used across this package's tests,
// so test files don't have to reach into package rill/clock (which
// itself imports rill, and would cycle back into test code built as
// part of this package).
type testTS int

func (t testTS) Compare(other Timestamp) int {
	o := other.(testTS)
	switch {
	case t < o:
		return -1
	case t > o:
		return 1
	default:
		return 0
	}
}

func (t testTS) String() string { return fmt.Sprintf("ts:%d", int(t)) }

// ts is a short constructor for testTS, used throughout this package's
// tests.
func ts(n int) Timestamp { return testTS(n) }

// testClock mints strictly increasing testTS values, standing in for
// rill/clock.Clock in tests that need DistinctUntilChanged's
// fresh-timestamp policy without importing the clock subpackage.
type testClock struct{ next int }

func (c *testClock) Now() Timestamp {
	c.next++
	return testTS(c.next)
}
