package entitlements

import "errors"

// ErrUnknownPlan indicates a plan tier missing from the static table. This is
// a configuration error: tiers are assigned at signup/payment time and must
// always resolve. Callers must not silently default to the free tier.
var ErrUnknownPlan = errors.New("entitlements: unknown plan tier")
