package router

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type clientIPKey struct{}

// ClientIP returns the caller address resolved by the router, or "".
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// middlewareClientIP resolves the caller address. Forwarding headers are only
// honored when the direct peer is a loopback or private address.
func middlewareClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := clientIP(r); ip != "" {
			r.RemoteAddr = ip
			r = r.WithContext(context.WithValue(r.Context(), clientIPKey{}, ip))
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	peer := peerIP(r.RemoteAddr)
	if peer == nil {
		return ""
	}
	if !peer.IsLoopback() && !peer.IsPrivate() {
		return peer.String()
	}

	for _, name := range []string{"True-Client-IP", "X-Real-IP"} {
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get(name))); ip != nil {
			return ip.String()
		}
	}

	// The left-most valid entry is the original client.
	for _, hop := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := net.ParseIP(strings.TrimSpace(hop)); ip != nil {
			return ip.String()
		}
	}

	return peer.String()
}

func peerIP(remoteAddr string) net.IP {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return net.ParseIP(host)
}
