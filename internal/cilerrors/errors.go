// Package cilerrors holds the two failure classes shared by every decoding layer.
// Callers test for them with errors.Is.
package cilerrors

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds reports an offset, index or length past the available data.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrMalformed reports a structural defect: reserved opcode, bad header,
	// overflowing address arithmetic.
	ErrMalformed = errors.New("malformed")
)

// OutOfBounds wraps ErrOutOfBounds with a formatted detail.
func OutOfBounds(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrOutOfBounds, fmt.Sprintf(format, args...))
}

// Malformed wraps ErrMalformed with a formatted detail.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
