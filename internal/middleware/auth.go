package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/easygallery/server/internal/models"
	"github.com/easygallery/server/internal/services"
)

type contextKey string

const (
	UserContextKey    contextKey = "user"
	SessionContextKey contextKey = "session"
)

// GetUserFromContext retrieves the authenticated user from request context
func GetUserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// GetSessionFromContext retrieves the web session from request context
func GetSessionFromContext(ctx context.Context) *models.WebSession {
	if session, ok := ctx.Value(SessionContextKey).(*models.WebSession); ok {
		return session
	}
	return nil
}

// SessionAuth creates middleware for session cookie authentication
func SessionAuth(authService *services.AuthService, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				writeAuthError(w, http.StatusUnauthorized, "Session required.")
				return
			}

			user, session, err := authService.ValidateSession(r.Context(), cookie.Value)
			if err != nil {
				writeAuthError(w, http.StatusInternalServerError, "Internal server error.")
				return
			}
			if user == nil {
				writeAuthError(w, http.StatusUnauthorized, "Session expired or invalid.")
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, session)
			ctx = context.WithValue(ctx, UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly rejects requests whose session user is not an admin. Must be
// mounted inside SessionAuth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			writeAuthError(w, http.StatusUnauthorized, "Session required.")
			return
		}
		if !user.IsAdmin {
			writeAuthError(w, http.StatusForbidden, "Admin access required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
