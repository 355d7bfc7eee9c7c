package middleware

import (
	"context"
	"net/http"
	"strings"

	"tesoro/internal/domain/authz"
	"tesoro/internal/shared/auth"
)

type ContextKey string

const IdentityKey ContextKey = "identity"

// IdentityFrom extracts the authenticated caller from the request context.
func IdentityFrom(ctx context.Context) (authz.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(authz.Identity)
	return identity, ok
}

// Auth validates the request's token and stores the resolved caller
// identity in the request context.
func Auth(jwt *auth.JWT) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string

			// Try HttpOnly cookie first (browser requests)
			if cookie, err := r.Cookie("access_token"); err == nil {
				token = cookie.Value
			} else {
				// Fall back to Authorization header (API clients)
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					http.Error(w, "Authentication required", http.StatusUnauthorized)
					return
				}
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || parts[0] != "Bearer" {
					http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
					return
				}
				token = parts[1]
			}

			claims, err := jwt.Validate(token)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
