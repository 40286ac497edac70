package clientip

import (
	"net"
	"net/http"
	"strings"
)

// GetIP returns the client's IP address from the request.
// Header priority:
//  1. CF-Connecting-IP (Cloudflare in front of the app)
//  2. X-Forwarded-For (standard proxy chain, first valid IP wins)
//  3. X-Real-IP (nginx reverse proxy)
//  4. RemoteAddr (direct connection fallback)
//
// Returns an empty string only when no candidate parses as an IP.
func GetIP(r *http.Request) string {
	if ip := parseIP(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for candidate := range strings.SplitSeq(forwarded, ",") {
			if ip := parseIP(candidate); ip != "" {
				return ip
			}
		}
	}

	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr may already be a bare IP.
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP validates and normalizes an IP address string.
// Returns an empty string if the input is not a valid IP.
func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
