package middleware

import (
	"context"
	"net/http"
	"strings"
)

const userIDKey contextKey = "userID"

// GuestTokenHeader carries the opaque guest token of an anonymous client
const GuestTokenHeader = "X-Guest-Token"

// TokenValidator validates access tokens issued by the auth service
type TokenValidator interface {
	ValidateAccessToken(token string) (int, error)
}

// AuthMiddleware validates JWT access token and extracts userID
func AuthMiddleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return authenticate(tokens, true)
}

// OptionalAuthMiddleware extracts userID when an access token is present and lets anonymous
// requests through. A present but invalid token is still rejected.
func OptionalAuthMiddleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return authenticate(tokens, false)
}

func authenticate(tokens TokenValidator, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)

			if token == "" {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				writeUnauthorized(w, "authentication required")
				return
			}

			userID, err := tokens.ValidateAccessToken(token)
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads the token from the Authorization header, then from the access_token cookie
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	cookie, err := r.Cookie("access_token")
	if err == nil {
		return cookie.Value
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// GetUserID retrieves the user ID from context
func GetUserID(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDKey).(int)
	return userID, ok
}
