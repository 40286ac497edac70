package ratelimiter

import (
	"net/http"

	"github.com/distribuia/distribuia/pkg/clientip"
)

// AnonymousIdentifier is the fallback when neither a user id nor a client IP
// can be determined. Anonymous traffic then shares one window per policy.
const AnonymousIdentifier = "anonymous"

// KeyFunc extracts a rate limit identifier from the request.
type KeyFunc func(r *http.Request) string

// Identify selects the rate limit identifier with fixed precedence:
// authenticated user id, then client IP, then AnonymousIdentifier.
// Never returns an empty string.
func Identify(userID string, r *http.Request) string {
	if userID != "" {
		return userID
	}
	if ip := clientip.GetIP(r); ip != "" {
		return ip
	}
	return AnonymousIdentifier
}
