package rill

import (
	"errors"
	"fmt"
)

// Namespace prefixes every sentinel error defined by this package.
const Namespace = "rill"

// ErrorKind classifies a rill Error. See Error.Recoverable and
// Error.Permanent for the classification table.
type ErrorKind uint8

const (
	// LockAcquisition: an internal mutex could not be acquired cleanly.
	// Recoverable, not permanent.
	LockAcquisition ErrorKind = iota
	// ChannelSend: the downstream consumer is gone. Not recoverable,
	// permanent.
	ChannelSend
	// ChannelReceive: the upstream producer closed abnormally. Not
	// recoverable, permanent.
	ChannelReceive
	// StreamProcessing: a generic operator-level failure. Not recoverable,
	// not permanent.
	StreamProcessing
	// Subscription: a driver-level failure (e.g. an Error item from the
	// subscribed sequence that no onError handler accepted). Not
	// recoverable, not permanent.
	Subscription
	// CallbackPanic: a user callback aborted via panic. Not recoverable,
	// not permanent.
	CallbackPanic
	// InvalidState: an operation was attempted in the wrong state. Not
	// recoverable, permanent.
	InvalidState
	// Timeout: an operation exceeded a deadline. Recoverable, not
	// permanent.
	Timeout
	// UnexpectedEnd: a producer terminated before the expected item count.
	// Not recoverable, not permanent.
	UnexpectedEnd
	// ResourceLimit: a bounded resource was exhausted. Recoverable, not
	// permanent.
	ResourceLimit
	// UserError: a wrapped error from user code. Not recoverable, not
	// permanent.
	UserError
	// Multiple: an aggregation of several errors from parallel work.
	// Recoverable/Permanent are derived from the aggregated errors.
	Multiple
)

func (k ErrorKind) String() string {
	switch k {
	case LockAcquisition:
		return "LockAcquisition"
	case ChannelSend:
		return "ChannelSend"
	case ChannelReceive:
		return "ChannelReceive"
	case StreamProcessing:
		return "StreamProcessing"
	case Subscription:
		return "Subscription"
	case CallbackPanic:
		return "CallbackPanic"
	case InvalidState:
		return "InvalidState"
	case Timeout:
		return "Timeout"
	case UnexpectedEnd:
		return "UnexpectedEnd"
	case ResourceLimit:
		return "ResourceLimit"
	case UserError:
		return "UserError"
	case Multiple:
		return "Multiple"
	default:
		return "Unknown"
	}
}

// Error is the classified, chainable failure carried by Error items. It
// implements the standard error interface plus Unwrap, so errors.Is/As
// compose with it normally.
type Error struct {
	kind ErrorKind
	msg  string
	// inner is the wrapped cause, set for UserError and for errors produced
	// by WithContext.
	inner error
	// joined holds the aggregated causes of a Multiple error.
	joined []error
}

// NewStreamError constructs a classified Error with a direct message (no
// wrapped cause). Kind must not be UserError or Multiple; use
// NewUserError/NewMultipleError for those.
func NewStreamError(kind ErrorKind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// WrapError classifies an existing error under kind, preserving it as the
// Unwrap cause. Unlike WithContext, this does not implement the
// UserError-specific context-chaining rule; it is for internal
// classification of errors the engine itself produces (e.g. tagging a
// closed-channel receive as ChannelReceive).
func WrapError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{kind: kind, msg: msg, inner: cause}
}

// NewUserError wraps an error returned by user-supplied code (a predicate,
// selector, accumulator, or callback). err must not be nil.
func NewUserError(err error) *Error {
	return &Error{kind: UserError, inner: err}
}

// NewMultipleError aggregates several causes into one Multiple error.
func NewMultipleError(errs ...error) *Error {
	return &Error{kind: Multiple, joined: errs}
}

// Kind returns the error's classification.
func (e *Error) Kind() ErrorKind { return e.kind }

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.kind == Multiple:
		return fmt.Sprintf("%s: %s", Namespace, errors.Join(e.joined...).Error())
	case e.inner != nil && e.msg != "":
		return fmt.Sprintf("%s: %s: %s", Namespace, e.msg, e.inner.Error())
	case e.inner != nil:
		return fmt.Sprintf("%s: %s", Namespace, e.inner.Error())
	default:
		return fmt.Sprintf("%s: %s", Namespace, e.msg)
	}
}

// Unwrap exposes the wrapped cause for errors.Is/As, and the joined causes
// for a Multiple error.
func (e *Error) Unwrap() error {
	if e.kind == Multiple {
		return errors.Join(e.joined...)
	}
	return e.inner
}

// Recoverable reports whether this failure class is, by itself,
// recoverable (see the per-kind comments on ErrorKind).
func (e *Error) Recoverable() bool {
	switch e.kind {
	case LockAcquisition, Timeout, ResourceLimit:
		return true
	case Multiple:
		for _, err := range e.joined {
			if !isRecoverable(err) {
				return false
			}
		}
		return len(e.joined) > 0
	default:
		return false
	}
}

// Permanent reports whether this failure class fundamentally terminates
// the upstream (see the per-kind comments on ErrorKind).
func (e *Error) Permanent() bool {
	switch e.kind {
	case ChannelSend, ChannelReceive, InvalidState:
		return true
	case Multiple:
		for _, err := range e.joined {
			if isPermanent(err) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func isRecoverable(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Recoverable()
	}
	return false
}

func isPermanent(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Permanent()
	}
	return false
}

// WithContext attaches context to the error, implementing the
// context-chaining rule: wrapping a UserError with context produces a
// StreamProcessing error carrying "{context}: {inner}"; wrapping any other
// variant preserves the original kind and simply prefixes the message
// (context is only attached to a user-supplied leaf).
func (e *Error) WithContext(context string) *Error {
	if e.kind == UserError {
		return &Error{
			kind: StreamProcessing,
			msg:  context,
			inner: &Error{kind: UserError, inner: e.inner},
		}
	}
	return &Error{kind: e.kind, msg: context, inner: e}
}

// Clone produces a best-effort duplicate of the error. Cloning a
// UserError converts it to StreamProcessing, since the wrapped error may
// not itself be cloneable; every other kind preserves its classification
// and message, re-wrapping its existing cause (causes are themselves
// immutable error values, so sharing them is safe).
func (e *Error) Clone() *Error {
	if e.kind == UserError {
		return &Error{kind: StreamProcessing, msg: e.Error(), inner: e.inner}
	}
	clone := &Error{kind: e.kind, msg: e.msg, inner: e.inner}
	if e.joined != nil {
		clone.joined = append([]error(nil), e.joined...)
	}
	return clone
}

// Format supports %v, %+v, %s, and %q.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "%s(%+v)", e.kind, e.Error())
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// Sentinel errors for conditions that are not themselves part of the Kind
// taxonomy above but are returned directly by driver/operator APIs.
var (
	// ErrSubjectClosed is returned by share's Subscribe once the subject
	// has closed (upstream Error or termination already delivered).
	ErrSubjectClosed = errors.New(Namespace + ": subject is closed")
	// ErrInvalidWindowSize is the construction-time panic payload for
	// WindowByCount(0); also exposed as a sentinel for callers that want
	// to recover() and compare via errors.Is.
	ErrInvalidWindowSize = errors.New(Namespace + ": window_by_count requires n >= 1")
)
