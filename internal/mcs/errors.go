package mcs

import "errors"

var (
	ErrInvalidMCS        = errors.New("mcs: invalid mcs index")
	ErrInvalidModulation = errors.New("mcs: invalid modulation")
)
