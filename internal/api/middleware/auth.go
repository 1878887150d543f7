package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"Postboard/internal/core/identity"
)

// Context keys for storing user information
type contextKey string

const UserIDKey contextKey = "user_id"

// AuthMiddleware enforces bearer token authentication for protected routes.
// Tokens are opaque to the middleware; the Verifier resolves them to a user id.
type AuthMiddleware struct {
	verifier identity.Verifier
	logger   *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware. A nil logger uses slog.Default().
func NewAuthMiddleware(verifier identity.Verifier, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireAuth middleware ensures the request carries a valid bearer token
// If not authenticated, returns 401
// If authenticated, injects the user id into context
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, "Missing Authorization header")
			return
		}

		// Must be Bearer token
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeAuthError(w, "Invalid Authorization header format. Expected: Bearer <token>")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			writeAuthError(w, "Missing bearer token")
			return
		}

		userID, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			if !identity.IsInvalidToken(err) {
				m.logger.Error("token verification failed",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path)
				writeJSONError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
				return
			}
			m.logger.Info("authentication failed",
				"ip", r.RemoteAddr,
				"method", r.Method,
				"path", r.URL.Path,
				"error", err)
			writeAuthError(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the authenticated user id from the request context
// Returns empty string if not authenticated
func GetUserID(r *http.Request) string {
	return GetAuthenticatedUserID(r.Context())
}

// GetAuthenticatedUserID extracts the authenticated user id from ctx
func GetAuthenticatedUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// SetTestUserID sets the user id in the context for testing purposes
// This function should ONLY be used in tests to mock authenticated users
func SetTestUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// writeAuthError writes a JSON error response for authentication failures
func writeAuthError(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusUnauthorized, "AuthenticationRequired", message)
}

func writeJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":   errorType,
		"message": message,
	}); err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
