package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/inkpress/blog-api/internal/models"
)

type key string

const userKey key = "auth_user"

// TokenVerifier checks a bearer token and returns the encoded user id.
// Defined here, on the consumer side; implemented by the token package.
type TokenVerifier interface {
	Verify(token string) (int, error)
}

// UserLoader resolves a verified user id to the stored user.
type UserLoader interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// RequireAuth extracts the bearer token from the Authorization header,
// verifies it, resolves the user, and attaches the identity to the request
// context. Any failure yields a 401 envelope; no session state is kept.
func RequireAuth(tokens TokenVerifier, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeEnvelopeError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			userID, err := tokens.Verify(tokenStr)
			if err != nil {
				writeEnvelopeError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}

			// A token may outlive its user; treat a missing user as unauthenticated.
			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				writeEnvelopeError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches an identity when a valid bearer token is present and
// otherwise lets the request through anonymously. Used on public post reads so
// an author or admin can see a pending post while everyone else gets 403.
func OptionalAuth(tokens TokenVerifier, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				if userID, err := tokens.Verify(strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
					if user, err := users.GetByID(r.Context(), userID); err == nil {
						r = r.WithContext(context.WithValue(r.Context(), userKey, user))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects requests whose context identity does not hold one of
// the given roles. Mount after RequireAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				writeEnvelopeError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeEnvelopeError(w, http.StatusForbidden,
				fmt.Sprintf("User role %s is not authorized to access this route", user.Role))
		})
	}
}

// UserFrom returns the identity attached by RequireAuth.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// WithUser returns a context carrying the given identity. Used by tests and
// by handlers that invoke downstream logic directly.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func writeEnvelopeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": message})
}
