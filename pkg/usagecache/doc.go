// Package usagecache is a cache-aside layer for usage-derived snapshots:
// remaining conversions, conversion lists, and email preferences.
//
// Cached values are never the source of truth. Every operation that changes
// usage-derived data (a new conversion, a regeneration, account deletion)
// must call Invalidate for the affected user, which removes every key that
// user could be reading.
//
// A nil backing store turns the cache into a pass-through: compute runs on
// every call and nothing is stored. Store failures behave the same way and
// are logged; they never reach the caller.
package usagecache
