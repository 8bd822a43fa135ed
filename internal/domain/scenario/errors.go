package scenario

import (
	"errors"
)

// Sentinel kinds for registry construction errors.
var (
	ErrDuplicatePath   = errors.New("duplicate endpoint path")
	ErrInvalidEndpoint = errors.New("invalid endpoint")
)
