package rill

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SourceMetaError exposes correlation metadata for an error observed on
// one leg of a multi-input operator (OrderedMerge and everything built on
// it). It is attached only when a pipeline is built WithErrorTagging; by
// default operators forward errors unchanged.
type SourceMetaError interface {
	error
	Unwrap() error
	// SourceIndex is the 0-based index of the input that produced the
	// error, as assigned at merge construction time.
	SourceIndex() int
	// CorrelationID is a per-error identifier, stable across any
	// re-wrapping the error undergoes further downstream.
	CorrelationID() uuid.UUID
}

type sourceTaggedError struct {
	err           error
	sourceIndex   int
	correlationID uuid.UUID
}

// taggedWithSource wraps err with the index of the input sequence that
// produced it and a fresh correlation ID, keyed on merge source index
// so errors from concurrent sources can be correlated downstream.
func taggedWithSource(err error, sourceIndex int) error {
	if err == nil {
		return nil
	}
	return &sourceTaggedError{err: err, sourceIndex: sourceIndex, correlationID: uuid.New()}
}

func (e *sourceTaggedError) Error() string { return e.err.Error() }
func (e *sourceTaggedError) Unwrap() error { return e.err }

func (e *sourceTaggedError) SourceIndex() int          { return e.sourceIndex }
func (e *sourceTaggedError) CorrelationID() uuid.UUID { return e.correlationID }

func (e *sourceTaggedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "source(index=%d,corr=%s): %+v", e.sourceIndex, e.correlationID, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractSourceIndex returns the source index tagged onto err, if present.
func ExtractSourceIndex(err error) (int, bool) {
	var sme SourceMetaError
	if errors.As(err, &sme) {
		return sme.SourceIndex(), true
	}
	return 0, false
}

// ExtractCorrelationID returns the correlation ID tagged onto err, if
// present.
func ExtractCorrelationID(err error) (uuid.UUID, bool) {
	var sme SourceMetaError
	if errors.As(err, &sme) {
		return sme.CorrelationID(), true
	}
	return uuid.UUID{}, false
}
