package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// maxUserAgentLength is the longest user-agent accepted without a warning.
const maxUserAgentLength = 500

type contextKey struct{}

var userIDKey contextKey

// ContextWithUserID attaches an authenticated user identifier to the context.
// The authentication layer calls this before the tracking middleware runs.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user identifier, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// Middleware returns the session tracking middleware. It rejects malformed
// paths, records authenticated requests out-of-band and forwards everything
// else untouched. Stateless; one instance is safe to share across the route
// tree.
func Middleware(tracker Tracker, recorder *Recorder, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Absolute gate: traversal and double-slash paths never reach
			// a handler.
			if strings.Contains(r.URL.Path, "..") || strings.Contains(r.URL.Path, "//") {
				logger.WithFields(logrus.Fields{
					"path":   r.URL.Path,
					"remote": r.RemoteAddr,
				}).Warn("Rejected request with malformed path")
				http.Error(w, "Invalid request path", http.StatusBadRequest)
				return
			}

			userID, authenticated := UserIDFromContext(r.Context())
			if !authenticated {
				next.ServeHTTP(w, r)
				return
			}

			userAgent := tracker.ExtractUserAgent(r)
			if userAgent == "" || len(userAgent) > maxUserAgentLength {
				logger.WithFields(logrus.Fields{
					"userID":   userID,
					"uaLength": len(userAgent),
				}).Warn("Suspicious user agent on authenticated request")
			}

			// Inputs are copied out synchronously; the write happens off the
			// request path and survives request cancellation.
			recorder.Enqueue(userID, tracker.ExtractIPAddress(r), userAgent)

			next.ServeHTTP(w, r)
		})
	}
}
