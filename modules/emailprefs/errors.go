package emailprefs

import "errors"

var (
	ErrInvalidToken = errors.New("emailprefs: invalid unsubscribe token")
	ErrNotFound     = errors.New("emailprefs: preferences not found")
)
