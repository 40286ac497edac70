package csrf

import (
	"errors"
	"net/http"
)

const (
	// HeaderName is the request header required on unsafe methods.
	HeaderName = "X-Requested-With"
	// HeaderValue is the exact value the header must carry.
	HeaderValue = "XMLHttpRequest"
)

// ErrValidationFailed is returned when an unsafe request lacks the required
// header or carries a different value.
var ErrValidationFailed = errors.New("csrf validation failed")

// Check validates the custom-header requirement for the given method and
// headers. Safe methods always pass. It never panics.
func Check(method string, headers http.Header) error {
	if isSafeMethod(method) {
		return nil
	}
	if headers.Get(HeaderName) != HeaderValue {
		return ErrValidationFailed
	}
	return nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
