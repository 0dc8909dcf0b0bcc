package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"gather/internal/auth"
	"gather/internal/metrics"
	"gather/internal/users"
)

const (
	sessionCookieName    = "gather_session"
	oauthStateCookieName = "gather_oauth_state"
	oauthStateCookieTTL  = 10 * time.Minute
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func newSlogMiddleware(logger *slog.Logger, recorder metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			route := r.URL.Path
			if ctx := chi.RouteContext(r.Context()); ctx != nil {
				if pattern := ctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			recorder.RecordRequest(r.Method, route, rec.status, duration)
			logger.Info("http request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", duration.String())
		})
	}
}

// SessionUser is the outward-facing session payload: the reconciled user
// record plus the ephemeral expiry copied from the token.
type SessionUser struct {
	users.User
	Expires time.Time `json:"expires"`
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionFromContext extracts the resolved session from the request context.
// Returns nil for anonymous requests.
func SessionFromContext(ctx context.Context) *SessionUser {
	session, _ := ctx.Value(sessionContextKey).(*SessionUser)
	return session
}

// newSessionMiddleware resolves the session cookie into a full user record
// and injects it into the request context. It never rejects: a missing,
// invalid, or unresolvable token simply leaves the request anonymous, and
// each route's guard decides what that means.
func newSessionMiddleware(signer *auth.TokenSigner, reconciler *users.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := signer.Verify(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// The token carries no profile hints; a record missing here is
			// recreated with empty defaults, matching first-login semantics.
			user, err := reconciler.Reconcile(r.Context(), claims.ID, claims.Provider, users.ProfileHints{})
			if err != nil {
				logger.Error("session reconcile failed", "user_id", claims.ID, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			session := &SessionUser{User: user, Expires: claims.Expires}
			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newSecurityHeadersMiddleware(environment string) func(http.Handler) http.Handler {
	isDev := strings.EqualFold(environment, "development")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Permissions-Policy", "geolocation=(), camera=(), microphone=()")

			if !isDev {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
