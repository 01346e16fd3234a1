package pricing

import "errors"

var (
	ErrEmptySelection   = errors.New("no items selected")
	ErrInvalidMagnitude = errors.New("magnitude must be a valid number")
	ErrMissingReason    = errors.New("a reason for the update is required")
	ErrInvalidField     = errors.New("invalid price field")
	ErrInvalidTransform = errors.New("invalid transform kind")
	ErrInvalidBaseline  = errors.New("invalid revision baseline")
	ErrUnknownItem      = errors.New("item is not in the loaded collection")
)

// ValidationError is returned when a request is rejected before any item is
// touched. Err is one of the sentinels above, so errors.Is works through it.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "validation: " + e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error) error { return &ValidationError{Err: err} }
