package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrBufferUnderrun  = errors.New("protocol: buffer underrun")
	ErrPayloadTooLarge = errors.New("protocol: payload section too large")
	ErrInvalidBool     = errors.New("protocol: invalid bool value")
	ErrTrailingBytes   = errors.New("protocol: trailing bytes after descriptor")
)

// FieldError names the wire field a decode failure happened at.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("protocol: field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
