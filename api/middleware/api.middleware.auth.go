// FilePath: api/middleware/api.middleware.auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/secador-solar/sensorhub/internal/errors"
	"github.com/secador-solar/sensorhub/internal/models"
)

// TokenVerifier resolves a bearer token to the account it was issued for.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.User, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

type contextKey string

const userContextKey contextKey = "user"

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate validates the token and adds the user to the request context
func (a *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			WriteError(w, r, errors.NewAuthError("not authenticated", nil))
			return
		}

		user, err := a.verifier.VerifyToken(r.Context(), token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			WriteError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

func extractToken(r *http.Request) string {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
