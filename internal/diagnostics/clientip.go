package diagnostics

import (
	"net"
	"net/http"
)

// clientIP extracts the client IP address from the request's RemoteAddr,
// for request logging on the diagnostics server. The diagnostics server is
// opt-in and normally bound to localhost or a private network rather than
// sitting behind a reverse proxy, so unlike a public-facing API this has no
// need to honor X-Forwarded-For/X-Real-IP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
