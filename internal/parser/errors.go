package parser

import (
	"errors"
	"fmt"
)

// ParseError describes malformed query text.
type ParseError struct {
	Option  string // System query option being parsed ("$filter"), empty for the resource path
	Message string
	Offset  int // Byte offset within the option value (or the whole input)
}

func (e *ParseError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("%s: offset %d: %s", e.Option, e.Offset, e.Message)
	}
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Message)
}

// IsParseError returns true if err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// withOption tags a ParseError with the option it came from.
func withOption(err error, option string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Option == "" {
		pe.Option = option
	}
	return err
}
