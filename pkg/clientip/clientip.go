// Package clientip extracts the real client IP address from HTTP requests.
//
// The server runs behind a reverse proxy in production, so the remote address
// of the TCP connection is usually the proxy, not the client. Proxy headers
// are consulted first, falling back to RemoteAddr.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// GetIP returns the client IP for the request.
//
// Lookup order: X-Forwarded-For (first valid address), X-Real-IP, RemoteAddr.
// Header values are only trusted because deployment terminates at a proxy
// that overwrites them; the identity key for rate limiting depends on it.
func GetIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// The first entry is the originating client, later entries are proxies.
		for part := range strings.SplitSeq(xff, ",") {
			ip := strings.TrimSpace(part)
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
		if net.ParseIP(xrip) != nil {
			return xrip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
