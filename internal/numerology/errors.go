package numerology

import "errors"

var ErrInvalidNumerologyID = errors.New("numerology: invalid numerology id")
