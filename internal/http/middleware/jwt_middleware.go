package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cueside/club-bookings/internal/http/response"
	"github.com/cueside/club-bookings/pkg/auth"
)

type ctxKey string

const CtxClaims ctxKey = "claims"

// RequireRole guards a route subtree behind a Bearer token carrying one
// of the given roles. Tokens come from the club's identity provider; we
// only verify them here.
func RequireRole(secret string, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				response.Unauthorized(w, "Missing or invalid authorization header")
				return
			}
			raw := strings.TrimPrefix(authz, "Bearer ")
			claims, err := auth.Parse(raw, secret)
			if err != nil {
				response.Unauthorized(w, "Invalid authorization token")
				return
			}
			if len(allowed) > 0 && !allowed[claims.Role] {
				response.Forbidden(w, "Insufficient role")
				return
			}
			ctx := context.WithValue(r.Context(), CtxClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func Claims(r *http.Request) *auth.Claims {
	v := r.Context().Value(CtxClaims)
	if v == nil {
		return nil
	}
	return v.(*auth.Claims)
}
