// Package auth is the boundary to the session layer. Session issuance lives
// with the auth frontend; this package resolves the session on each request
// through a Validator, stores the resulting user in the request context, and
// enforces the 401 UNAUTHENTICATED contract on protected routes.
// CookieValidator is the production implementation, verifying the
// HMAC-signed session cookie the frontend issues.
package auth
