// Package clientip resolves the peer address used for rate limiting and
// abuse blocking.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the request's peer IP. Forwarded-For and Real-IP
// headers are deliberately ignored: they are client-controlled unless a
// trusted proxy strips them, and a spoofed header would let an attacker
// shift rate-limit blocks onto someone else's address.
func RealClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		// RemoteAddr without a port (tests, unusual listeners).
		return addr
	}
	return host
}
