package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/paysub/paysub/internal/auth"
	"github.com/paysub/paysub/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"
	// ClaimsKey is the context key for the full token claims
	ClaimsKey ContextKey = "claims"
)

// TokenChecker reports whether a token ID has been revoked via logout
type TokenChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Auth validates bearer tokens and injects the caller identity into the
// request context
type Auth struct {
	jwt       *auth.JWTManager
	blocklist TokenChecker
}

// NewAuth creates the auth middleware with its dependencies injected
func NewAuth(jwtManager *auth.JWTManager, blocklist TokenChecker) *Auth {
	return &Auth{jwt: jwtManager, blocklist: blocklist}
}

// RequireUser rejects requests without a valid, non-revoked access token
func (a *Auth) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := a.authenticate(w, r)
		if !ok {
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests from non-admin callers
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		if !claims.IsAdmin {
			response.Forbidden(w, "Access denied. Admins only.")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) authenticate(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		response.Unauthorized(w, "Authorization header required")
		return nil, false
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		response.Unauthorized(w, "Invalid authorization header format")
		return nil, false
	}

	claims, err := a.jwt.Verify(parts[1], auth.TokenTypeAccess)
	if err != nil {
		response.Unauthorized(w, "Invalid or expired token")
		return nil, false
	}

	revoked, err := a.blocklist.IsTokenRevoked(r.Context(), claims.ID)
	if err != nil {
		response.InternalError(w, "Failed to validate token")
		return nil, false
	}
	if revoked {
		response.Unauthorized(w, "Token has been revoked")
		return nil, false
	}

	return claims, true
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetClaims extracts the token claims from the request context
func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims, ok
}
