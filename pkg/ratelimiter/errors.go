package ratelimiter

import "errors"

var (
	ErrStoreRequired  = errors.New("ratelimiter: store is required")
	ErrInvalidPolicy  = errors.New("ratelimiter: policy limit and window must be positive")
	ErrEmptyIdentifier = errors.New("ratelimiter: identifier is required")
)
