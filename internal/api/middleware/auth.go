package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/teamly/internal/database/models"
)

type contextKey string

const userKey contextKey = "user"

// CallerResolver turns a bearer token into an authenticated user.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, accessToken string) (*models.User, error)
}

// Auth verifies the bearer token, resolves the caller and stores the user
// on the request context. Invalid, expired or unresolvable tokens all end
// the request with 401.
func Auth(resolver CallerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string

			// 1. Check Authorization header (API requests)
			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}

			// 2. Check cookie (browser clients)
			if token == "" {
				if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
					token = cookie.Value
				}
			}

			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := resolver.ResolveCaller(r.Context(), token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the authenticated user from the context, or nil.
func GetUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userKey).(*models.User); ok {
		return user
	}
	return nil
}

// GetUserID returns the authenticated user's id, or uuid.Nil.
func GetUserID(ctx context.Context) uuid.UUID {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return uuid.Nil
}

// RequireRole ensures the authenticated user has one of the given roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}
