// Package session tracks authenticated HTTP activity: a middleware that
// validates request hygiene and an out-of-band recorder that persists session
// records without ever blocking the request path.
package session

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/VelaTrade/dex-lib/sessiondb"
)

// defaultTrustedHeaders is the proxy header order consulted for the client
// IP when no override is configured.
var defaultTrustedHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

// Tracker extracts client attributes from a request and persists session
// records.
type Tracker interface {
	// ExtractIPAddress returns the client IP, preferring trusted proxy
	// headers over the socket peer address.
	ExtractIPAddress(r *http.Request) string

	// ExtractUserAgent returns the request's user-agent header.
	ExtractUserAgent(r *http.Request) string

	// TrackSession writes one session record to the store.
	TrackSession(ctx context.Context, store *sessiondb.Store, userID, ip, userAgent string) error
}

type tracker struct {
	trustedHeaders []string
}

// NewTracker creates a tracker consulting the given proxy headers, in order,
// for the client IP. An empty list selects the default header order.
func NewTracker(trustedHeaders []string) Tracker {
	if len(trustedHeaders) == 0 {
		trustedHeaders = defaultTrustedHeaders
	}
	return &tracker{trustedHeaders: trustedHeaders}
}

// ExtractIPAddress returns the client IP. Trusted proxy headers win over the
// socket peer; X-Forwarded-For yields its first hop.
func (t *tracker) ExtractIPAddress(r *http.Request) string {
	for _, header := range t.trustedHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		// A forwarding chain lists the client first.
		if first, _, found := strings.Cut(value, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(value)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ExtractUserAgent returns the request's user-agent header.
func (t *tracker) ExtractUserAgent(r *http.Request) string {
	return r.Header.Get("User-Agent")
}

// TrackSession writes one session record to the store.
func (t *tracker) TrackSession(ctx context.Context, store *sessiondb.Store, userID, ip, userAgent string) error {
	return store.InsertSession(ctx, &sessiondb.SessionRecord{
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
	})
}
