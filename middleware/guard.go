package middleware

import (
	"context"
	"net/http"

	warden "github.com/tobysalz/warden"
)

// SessionCookieName is the cookie the guard reads the session token from.
const SessionCookieName = "jwt"

type emailContextKey struct{}

// EmailFromContext returns the authenticated email stored by [SessionGuard].
func EmailFromContext(ctx context.Context) (warden.Email, bool) {
	email, ok := ctx.Value(emailContextKey{}).(warden.Email)
	return email, ok
}

// SessionGuard wraps a handler with full session verification: cookie
// presence, token signature and expiry, and the revocation ledger. Any
// failure is a uniform 401 with no detail about which check rejected.
func SessionGuard(engine *warden.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			email, err := engine.VerifySession(r.Context(), cookie.Value)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), emailContextKey{}, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
