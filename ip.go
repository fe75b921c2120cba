package authcode

import (
	"net"
	"net/http"
	"strings"
)

// isLoopback returns true if an IP is a loopback address. Addresses on
// a private network are someone else's machine.
func isLoopback(addr string) bool {
	a := net.ParseIP(addr)
	return a != nil && a.IsLoopback()
}

// remoteAddr returns the IP portion of the RemoteAddr of the passed
// request, discarding any port and IPv6 brackets. Forwarding headers are
// ignored; nothing sits in front of the callback listener, so they could
// only ever come from the client.
func remoteAddr(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.Trim(addr, "[]")
	}
	return host
}
