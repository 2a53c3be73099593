package engage

import (
	"errors"
	"fmt"
)

// ErrRequestInFlight is returned when a mutation is requested while an
// identical one is still awaiting its remote result. The local state is
// untouched; the caller should treat the duplicate intent as absorbed.
var ErrRequestInFlight = errors.New("request already in flight")

// ErrDebounced is returned when a retriggerable mutation arrives inside
// the minimum interval since the last accepted one for the same target.
var ErrDebounced = errors.New("mutation debounced")

// ValidationError reports input rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
