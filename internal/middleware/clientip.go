package middleware

import (
	"net"
	"net/http"
)

// clientIP returns the RemoteAddr host. Forwarding headers are not
// trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
