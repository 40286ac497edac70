package ratelimiter

import (
	"context"
	"log/slog"
	"time"
)

// nowFunc is swapped out in tests to control window boundaries.
var nowFunc = time.Now

// Limiter enforces one Policy against one Store.
//
// The zero value of *Limiter (nil) means "rate limiting not configured":
// Check on a nil Limiter returns nil, and callers must treat a nil Result as
// an allowed request.
type Limiter struct {
	store    Store
	policy   Policy
	log      *slog.Logger
	onDenied func(policy string)
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithDenialObserver registers a callback invoked with the policy name each
// time a request is denied. The metrics collector hooks in here.
func WithDenialObserver(fn func(policy string)) Option {
	return func(l *Limiter) { l.onDenied = fn }
}

// New creates a Limiter for the given policy.
func New(store Store, policy Policy, log *slog.Logger, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if err := policy.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	l := &Limiter{store: store, policy: policy, log: log}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Check records a request for identifier and reports whether it is allowed.
//
// A nil receiver and a backing-store failure both return nil: the limiter
// fails open so that store outages never reject user-facing requests. Store
// failures are logged at warn level.
func (l *Limiter) Check(ctx context.Context, identifier string) *Result {
	if l == nil {
		return nil
	}
	if identifier == "" {
		identifier = AnonymousIdentifier
	}

	key := "ratelimit:" + l.policy.Name + ":" + identifier

	now := nowFunc()
	allowed, count, err := l.store.RecordIfAllowed(ctx, key, now, l.policy.Window, l.policy.Limit)
	if err != nil {
		l.log.WarnContext(ctx, "rate limit store unavailable, failing open",
			slog.String("policy", l.policy.Name),
			slog.Any("error", err),
		)
		return nil
	}

	if !allowed && l.onDenied != nil {
		l.onDenied(l.policy.Name)
	}

	return &Result{
		Allowed:   allowed,
		Limit:     l.policy.Limit,
		Remaining: max(0, l.policy.Limit-int(count)),
		ResetAt:   now.Add(l.policy.Window),
	}
}

// Reset clears the window for identifier. No-op on a nil Limiter.
func (l *Limiter) Reset(ctx context.Context, identifier string) error {
	if l == nil {
		return nil
	}
	return l.store.Reset(ctx, "ratelimit:"+l.policy.Name+":"+identifier)
}
