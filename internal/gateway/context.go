package gateway

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/coursehub/gateway/pkg/cache"
	"github.com/coursehub/gateway/pkg/limiter"
)

// RequestContext accumulates what happens to one request as it moves
// through the pipeline. It exists for the duration of the request and
// is discarded after the final log emission; it is never persisted.
type RequestContext struct {
	ID         string
	Method     string
	Path       string
	ClientAddr string
	UserID     string
	Role       string
	StartedAt  time.Time

	Class     limiter.Class
	CacheTier cache.Tier
	Status    int
	Err       error
}

// clientAddr strips the port from the peer address so the rate-limit
// identifier stays stable across connections.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// bearerToken extracts the credential from an Authorization header, or
// "" when none is present.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}

// classify picks the admission class from the request shape alone, so
// a denied request never needs the route table. Administrative paths
// and deletions get the strict budget.
func classify(method, path string) limiter.Class {
	if method == http.MethodDelete || strings.Contains(path, "/admin/") {
		return limiter.ClassStrict
	}
	return limiter.ClassDefault
}
