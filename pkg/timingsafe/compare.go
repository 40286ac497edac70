package timingsafe

import "crypto/subtle"

// Equal reports whether a and b are equal without leaking the position of the
// first differing byte. Empty inputs and length mismatches return false
// immediately; revealing the length is an accepted tradeoff.
//
// It never panics and has no side effects.
func Equal(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
