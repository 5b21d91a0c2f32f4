package middleware

import (
	"context"
	"net/http"
	"strings"

	"mediqa/casesim/internal/service"
)

type contextKey string

const TabIDKey contextKey = "tabId"

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireTab validates a tab JWT from the Authorization header or the token query param
func (m *AuthMiddleware) RequireTab(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateTabToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), TabIDKey, claims.TabID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetTabID extracts tab ID from context
func GetTabID(ctx context.Context) string {
	if v := ctx.Value(TabIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// TokenFromRequest returns the bearer token, falling back to the token query
// param used by websocket clients
func TokenFromRequest(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
