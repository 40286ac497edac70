// Package ratelimiter implements sliding-window rate limiting for the API.
//
// A Limiter tracks individual request timestamps per identifier inside a
// moving time window, backed by either the in-memory store or Redis. Four
// named policies cover the API surface: general requests, expensive content
// generation, authentication attempts, and the public unsubscribe endpoint.
//
// Rate limiting is an optional protection, never a point of failure: a nil
// Limiter and a store error both yield a nil Result, which callers treat as
// "allow the request".
package ratelimiter
