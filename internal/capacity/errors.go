package capacity

import "errors"

var (
	ErrOverflow        = errors.New("capacity: result overflows")
	ErrInvalidCodeRate = errors.New("capacity: code rate must be in (0, 1]")
)
