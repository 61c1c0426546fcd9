package netstr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat indicates a malformed netstring.
	ErrInvalidFormat = errors.New("netstr: invalid format")

	// ErrTooLarge indicates a length field above the configured maximum.
	ErrTooLarge = errors.New("netstr: length exceeds maximum")
)

// FormatError describes where and why a netstring failed to parse.
type FormatError struct {
	Offset int    // byte offset at which the problem was seen
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("netstr: format error at offset %d: %s", e.Offset, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidFormat
}
