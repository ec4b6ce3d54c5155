package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/supplementsafetybible/backend/identity"
)

// TokenVerifier validates bearer tokens. Implemented by identity.TokenService.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*identity.TokenClaims, error)
}

type contextKey struct{ name string }

var claimsContextKey = &contextKey{name: "auth_claims"}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// Authenticate verifies the request's bearer token, if any, and returns
// the claims. The bool reports whether a valid token was present.
func Authenticate(r *http.Request, verifier TokenVerifier) (*identity.TokenClaims, bool) {
	token, ok := BearerToken(r)
	if !ok {
		return nil, false
	}
	claims, err := verifier.VerifyAccessToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified claims in the request context.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := Authenticate(r, verifier)
			if !ok {
				Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*identity.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*identity.TokenClaims)
	return claims, ok
}
