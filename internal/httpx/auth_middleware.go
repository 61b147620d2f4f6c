package httpx

import (
	"net/http"
	"strings"

	"bookcatalog/internal/platform/crypto"
)

const (
	MsgMissingToken = "No JWT provided, please sign in."
	MsgInvalidToken = "Provided JWT is invalid. Please sign-in again."
)

// AuthMiddleware guards closed routes. A missing bearer token is 401, a token
// that fails verification is 403.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", MsgMissingToken, nil)
				return
			}

			claims, err := crypto.ParseToken(secret, strings.TrimSpace(token))
			if err != nil {
				JSONError(w, r, http.StatusForbidden, "FORBIDDEN", MsgInvalidToken, nil)
				return
			}

			ctx := ContextWithUser(r.Context(), claims.Sub, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
