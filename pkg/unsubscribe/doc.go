// Package unsubscribe issues and verifies the tokens embedded in email
// unsubscribe links.
//
// Tokens are deterministic: an HMAC-SHA256 over the user id, truncated to
// 16 bytes and hex encoded. The same user id always yields the same token,
// so links can be regenerated for every outbound email without storing
// anything. The tradeoff is that tokens never expire; see DESIGN.md.
package unsubscribe
