package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/fjod/go_shop/internal/auth"
	"github.com/fjod/go_shop/internal/domain"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// AuthMiddleware verifies the bearer token and stores the identity in the
// request context. Handlers downstream only ever see the resolved id/role.
func AuthMiddleware(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "authorization required")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly rejects requests whose resolved role is not admin.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if getRole(r.Context()) != domain.RoleAdmin {
			respondError(w, http.StatusForbidden, "forbidden", "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

func getRole(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}
