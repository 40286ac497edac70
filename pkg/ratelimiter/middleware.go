package ratelimiter

import (
	"net/http"
	"strconv"

	"github.com/distribuia/distribuia/core"
)

// Middleware enforces the limiter for every request, keyed by keyFunc.
// A nil limiter, an empty key result, or a store failure lets the request
// through; a denied check responds 429 with the RATE_LIMIT_EXCEEDED body and
// stops the chain.
func Middleware(l *Limiter, keyFunc KeyFunc) func(http.Handler) http.Handler {
	if keyFunc == nil {
		panic("ratelimiter.Middleware: keyFunc is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := l.Check(r.Context(), keyFunc(r))
			if result == nil {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retryAfter := int(result.RetryAfter().Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				core.Error(w, core.ErrRateLimitExceeded)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
