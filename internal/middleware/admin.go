package middleware

import (
	"context"
	"net/http"

	"tdc-backend/internal/auth"
	"tdc-backend/internal/httpx"
	"tdc-backend/internal/transport"
)

type claimsKey struct{}

// AdminAuth accepts requests carrying a bearer token with the admin role.
func AdminAuth(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
				return
			}

			token, ok := httpx.BearerToken(r)
			if !ok {
				transport.WriteError(w, http.StatusUnauthorized, "missing bearer token", nil)
				return
			}
			claims, err := manager.Parse(token)
			if err != nil || claims.Role != auth.RoleAdmin {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}
