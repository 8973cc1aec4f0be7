package itinerary

import "fmt"

// ValidationError reports a malformed trip request. It is never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrMissingFields    = &ValidationError{Message: "missing required fields"}
	ErrInvalidDateRange = &ValidationError{Message: "invalid date range"}
)

// ParseError means the model reply was not well-formed JSON after fence stripping.
// Raw is the reply exactly as received.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse itinerary reply: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ShapeError means the reply parsed but does not have the itinerary shape.
// Value is the generic parsed JSON value.
type ShapeError struct {
	Value  any
	Reason string
}

func (e *ShapeError) Error() string {
	return "invalid itinerary structure: " + e.Reason
}
