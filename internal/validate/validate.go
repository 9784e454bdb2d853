// Package validate provides pure bound checks for caller-supplied input.
// Violations are reported as structured errors; input is never truncated,
// clamped, or otherwise coerced.
package validate

import "fmt"

// Kind distinguishes how a bound was violated, so callers can message
// "too short" and "too long" differently.
type Kind int

const (
	// TooShort means a text field fell below its minimum length.
	TooShort Kind = iota
	// TooLong means a text field exceeded its maximum length.
	TooLong
	// OutOfRange means a numeric value fell outside its inclusive range.
	OutOfRange
)

func (k Kind) String() string {
	switch k {
	case TooShort:
		return "too short"
	case TooLong:
		return "too long"
	case OutOfRange:
		return "out of range"
	default:
		return "invalid"
	}
}

// Error describes a single bound violation.
type Error struct {
	Field string
	Kind  Kind
	Min   int
	Max   int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: must be within [%d, %d]", e.Field, e.Kind, e.Min, e.Max)
}

// Text checks that the byte length of value lies within [min, max], both ends
// inclusive. The unit is the byte, the smallest addressable text element.
func Text(field, value string, min, max int) error {
	if len(value) < min {
		return &Error{Field: field, Kind: TooShort, Min: min, Max: max}
	}
	if len(value) > max {
		return &Error{Field: field, Kind: TooLong, Min: min, Max: max}
	}
	return nil
}

// Range checks that value lies within [min, max], both ends inclusive.
func Range(field string, value, min, max int) error {
	if value < min || value > max {
		return &Error{Field: field, Kind: OutOfRange, Min: min, Max: max}
	}
	return nil
}

// IsKind reports whether err is a validation error of the given kind.
func IsKind(err error, kind Kind) bool {
	verr, ok := err.(*Error)
	return ok && verr.Kind == kind
}
