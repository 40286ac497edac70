package ratelimiter

import "time"

// Policy is a named (limit, window) pair for a class of endpoints.
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Named policies covering the API surface.
var (
	// PolicyAPI covers general authenticated API traffic.
	PolicyAPI = Policy{Name: "api", Limit: 10, Window: 10 * time.Second}
	// PolicyGeneration covers content generation, which fans out to the LLM
	// backend and is priced per call.
	PolicyGeneration = Policy{Name: "generation", Limit: 5, Window: time.Minute}
	// PolicyAuth covers login and signup attempts.
	PolicyAuth = Policy{Name: "auth", Limit: 5, Window: time.Minute}
	// PolicyUnsubscribe covers the public unsubscribe endpoint, which needs
	// no authentication and therefore gets the strictest budget.
	PolicyUnsubscribe = Policy{Name: "unsubscribe", Limit: 5, Window: time.Hour}
)

func (p Policy) validate() error {
	if p.Limit <= 0 || p.Window <= 0 {
		return ErrInvalidPolicy
	}
	return nil
}

// Result contains the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether the request may proceed.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests left in the current window.
	Remaining int

	// ResetAt is when the oldest counted request leaves the window.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}
