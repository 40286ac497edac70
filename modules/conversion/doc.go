// Package conversion implements the product core: turning a source (YouTube
// video, article URL, or raw text) into social media content, and
// regenerating alternative versions of an existing output.
//
// Every mutating operation runs the same pipeline: the router has already
// applied CSRF, session, and rate limit checks; the service applies plan
// entitlements, calls the generation backend, persists the result, and
// invalidates the user's usage cache.
package conversion
