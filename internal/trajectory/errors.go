package trajectory

import (
	"errors"
	"fmt"
)

// Format errors raised while reading a dump.
var (
	// ErrTooFewFields indicates a body line with fewer than 8 tokens.
	ErrTooFewFields = errors.New("trajectory: body line needs 8 fields (name mass px py pz vx vy vz)")

	// ErrMissingTime indicates a step header without a "Time:" field.
	ErrMissingTime = errors.New("trajectory: step header has no Time: field")
)

// FormatError wraps a parse failure with the offending line.
type FormatError struct {
	Line    int
	Text    string
	Wrapped error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("line %d: %v (%q)", e.Line, e.Wrapped, e.Text)
}

func (e *FormatError) Unwrap() error {
	return e.Wrapped
}
