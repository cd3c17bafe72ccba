package services

import (
	"errors"
	"fmt"
)

// Sentinel errors. Handlers map these to HTTP statuses; everything else is a 500.
var (
	// ErrInvalidArgument is returned for malformed caller input such as a bad month key.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNothingToInvoice is returned when a month has no billable time.
	ErrNothingToInvoice = errors.New("nothing to invoice")

	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("conflict")

	// ErrAggregationFailed is returned when the ledger or project lookup fails during a preview.
	ErrAggregationFailed = errors.New("aggregation failed")

	// ErrPersistenceFailed is returned when writing a closed invoice fails.
	ErrPersistenceFailed = errors.New("persistence failed")

	// ErrSequenceExhausted is returned when a month already has 999 invoices.
	ErrSequenceExhausted = errors.New("invoice sequence exhausted for month")

	// ErrAlreadyClosed is returned when the re-close policy forbids a second invoice for a month.
	ErrAlreadyClosed = errors.New("month already closed")
)

// OpError records the operation and month that failed alongside the cause.
// errors.Is sees through it to both Kind and Err.
type OpError struct {
	// Op is the operation that failed (e.g. "close", "preview").
	Op string
	// Month is the month key involved, if any.
	Month string
	// Kind is the sentinel classifying the failure.
	Kind error
	// Err is the underlying cause; may be nil.
	Err error
}

func (e *OpError) Error() string {
	msg := e.Op
	if e.Month != "" {
		msg += " " + e.Month
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", msg, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", msg, e.Kind)
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func opErr(op, month string, kind, cause error) error {
	return &OpError{Op: op, Month: month, Kind: kind, Err: cause}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}
