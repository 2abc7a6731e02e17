package ratelimit

import "errors"

var (
	ErrInvalidMax    = errors.New("ratelimit: max must be positive")
	ErrInvalidWindow = errors.New("ratelimit: window must be positive")
	ErrKeyRequired   = errors.New("ratelimit: key is required")
	ErrStoreRequired = errors.New("ratelimit: store is required")
)
