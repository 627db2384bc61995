package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sheetboard-api/internal/domain"
	jwtinfra "github.com/sheetboard-api/internal/infrastructure/jwt"
	"go.uber.org/zap"
)

type contextKey string

const (
	ClaimsKey contextKey = "claims"
	UserKey   contextKey = "user"
)

type tokenVerifier interface {
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

type userResolver interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Auth validates the Bearer JWT, resolves its subject against the user store and
// injects both the claims and the user into the request context. A token whose
// user no longer exists is rejected as unauthenticated.
func Auth(tokens tokenVerifier, users userResolver, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			claims, err := tokens.Verify(tokenStr)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}
			u, err := users.Get(r.Context(), claims.UserID)
			if errors.Is(err, domain.ErrNotFound) {
				writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "user not found")
				return
			}
			if err != nil {
				log.Error("resolve token subject", zap.String("user_id", claims.UserID), zap.Error(err))
				writeJSONError(w, http.StatusInternalServerError, "server_error", "server error")
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			ctx = context.WithValue(ctx, UserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}

// UserFromContext returns the user resolved by Auth.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserKey).(*domain.User)
	return u, ok
}

// WithUser returns ctx carrying u as the resolved caller.
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}
