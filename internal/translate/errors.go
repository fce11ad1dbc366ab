package translate

import (
	"errors"
	"fmt"
)

// UnsupportedMethodError is returned when a filter calls a method that has no
// document-store equivalent. The translation is aborted and no partial result
// is returned.
type UnsupportedMethodError struct {
	Method string // Method name as written in the query
}

// Error implements the error interface.
func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported operation: method call %q not implemented", e.Method)
}

// DepthError is returned when the tree is nested deeper than the configured
// limit.
type DepthError struct {
	Limit int // Maximum allowed depth
}

// Error implements the error interface.
func (e *DepthError) Error() string {
	return fmt.Sprintf("query too complex: nesting exceeds %d levels", e.Limit)
}

// IsUnsupportedMethod returns true if err is or wraps an UnsupportedMethodError.
func IsUnsupportedMethod(err error) bool {
	var ue *UnsupportedMethodError
	return errors.As(err, &ue)
}

// IsTooComplex returns true if err is or wraps a DepthError.
func IsTooComplex(err error) bool {
	var de *DepthError
	return errors.As(err, &de)
}
