package metrics

// Canonical instrument names used by rill's own instrumentation
// call sites (OrderedMerge's heap, Share's subscriber set, the
// subscription drivers). Exported so a Provider implementation or a
// dashboard config can match on them without restating the strings,
// and so every caller inside the package wires the same name for the
// same concept instead of drifting by a typo.
const (
	// MergeQueueDepth is the UpDownCounter tracking how many items
	// OrderedMerge is currently holding in its heap, waiting on the
	// must-wait watermark rule before they're safe to emit.
	MergeQueueDepth = "rill_merge_queue_depth"

	// ShareSubscribers is the UpDownCounter tracking the current
	// number of live Subject subscribers.
	ShareSubscribers = "rill_share_subscribers"

	// CallbackLatencySeconds is the Histogram a subscription driver
	// records one onNext call's wall-clock duration into.
	CallbackLatencySeconds = "rill_callback_latency_seconds"
)
