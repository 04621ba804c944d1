package auth

import (
	"context"
	"net/http"
	"strings"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "relay_session"

type contextKey string

const identityKey contextKey = "identity"

// IdentityFromContext returns the identity bound to the request, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// WithIdentity binds an identity to a context. Exported for tests and
// for the handlers' own wiring; production requests only ever get an
// identity through Middleware.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Middleware validates the session token of each incoming request and
// injects the bound identity into the request context. Requests without
// a valid session are redirected to the login page.
func Middleware(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			id, err := tokens.Validate(tokenStr)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// tokenFromRequest prefers the session cookie and falls back to a
// standard "Bearer <token>" Authorization header for non-browser clients.
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
