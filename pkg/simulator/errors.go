package simulator

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrEmptyStrategy      = errors.New("strategy has no stints")
	ErrNegativeLaps       = errors.New("total laps must not be negative")
	ErrTooManyLaps        = errors.New("total laps over the simulator limit")
	ErrUnknownCompound    = errors.New("compound not in tyre table")
	ErrInvalidPitStopLoss = errors.New("pit stop loss must not be negative")
	ErrInvalidTable       = errors.New("invalid tyre table")
)

// ValidationError is returned before any lap is simulated. Callers can match
// the reason with errors.Is against the Err* sentinels.
type ValidationError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Cause lets errors.Cause from github.com/pkg/errors reach the sentinel.
func (e *ValidationError) Cause() error {
	return e.Err
}

// IsValidation reports whether err, or anything it wraps, is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
