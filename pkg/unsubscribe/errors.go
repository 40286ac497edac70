package unsubscribe

import "errors"

var ErrMissingSecret = errors.New("unsubscribe: secret is required")
