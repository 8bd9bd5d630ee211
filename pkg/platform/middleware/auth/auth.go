// Package auth provides the bearer-token middleware guarding mutating
// endpoints.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"hemicycle/internal/authtoken"
	dErrors "hemicycle/pkg/domain-errors"
	"hemicycle/pkg/platform/httputil"
)

// TokenValidator validates a raw bearer token.
type TokenValidator interface {
	ValidateToken(tokenString string) (*authtoken.Claims, error)
}

type contextKeySubject struct{}

// Subject returns the authenticated subject from the context, or "" when the
// request was not authenticated.
func Subject(ctx context.Context) string {
	subject, ok := ctx.Value(contextKeySubject{}).(string)
	if !ok {
		return ""
	}
	return subject
}

// RequireAuth rejects requests without a valid bearer token. A nil validator
// disables the guard entirely (development default).
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validator == nil {
				next.ServeHTTP(w, r)
				return
			}

			const bearerPrefix = "Bearer "
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := validator.ValidateToken(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				logger.WarnContext(r.Context(), "rejected bearer token", "error", err)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid bearer token"))
				return
			}

			ctx := context.WithValue(r.Context(), contextKeySubject{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
