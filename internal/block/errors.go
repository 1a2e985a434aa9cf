package block

import "errors"

var (
	ErrInvalidAllocation = errors.New("block: invalid allocation")
	ErrInvalidMimo       = errors.New("block: invalid mimo configuration")
	ErrNilDescriptor     = errors.New("block: nil descriptor")
	ErrInvalidSymbol     = errors.New("block: invalid symbol")
)
