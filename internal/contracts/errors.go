package contracts

import (
	"errors"
	"fmt"
)

// DataError means the instrument itself is invalid or unknown
// It is the only error that aborts an evaluation.
type DataError struct {
	Code   string
	Reason string
	Err    error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error for %q: %s: %v", e.Code, e.Reason, e.Err)
	}
	return fmt.Sprintf("data error for %q: %s", e.Code, e.Reason)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a DataError
func NewDataError(code, reason string, err error) *DataError {
	return &DataError{Code: code, Reason: reason, Err: err}
}

// IsDataError reports whether err is (or wraps) a DataError
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

// ComputationError flags a NaN/Inf that escaped a guarded computation
// It indicates a bug, not a user-facing condition.
type ComputationError struct {
	Style  Style
	Factor string
	Value  float64
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation error in %s/%s: non-finite value %v", e.Style, e.Factor, e.Value)
}

// ErrUnknownInstrument is returned by sources that cannot find an instrument
var ErrUnknownInstrument = errors.New("unknown instrument")

// ErrNotFound is returned by stores when nothing was saved for a code
var ErrNotFound = errors.New("not found")
