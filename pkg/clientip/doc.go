// Package clientip extracts the originating client IP from HTTP requests,
// trying proxy headers in trust order before falling back to the socket
// address. Values are validated and normalized with net.ParseIP so spoofed
// garbage in headers never propagates into rate limit keys or logs.
package clientip
