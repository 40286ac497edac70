// Package timingsafe provides constant-time string comparison for secret
// values such as tokens and signatures.
//
// The comparison accumulates XOR differences across every byte so that the
// execution time does not depend on the position of the first mismatch.
// Length differences return early: length is considered public information,
// content is not.
//
// Usage:
//
//	if timingsafe.Equal(providedToken, expectedToken) {
//	    // token accepted
//	}
package timingsafe
