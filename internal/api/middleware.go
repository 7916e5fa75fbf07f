package api

import (
	"context"
	"net/http"

	"storefront/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalHeader carries the caller identity resolved by the identity
// provider in front of this service. The value is opaque here.
const PrincipalHeader = "X-Principal"

// PrincipalMiddleware copies the caller principal from the request
// header into the context. Requests without the header proceed with a
// zero principal; handlers that mutate state reject those themselves.
func PrincipalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := domain.Principal(r.Header.Get(PrincipalHeader))
		ctx := context.WithValue(r.Context(), principalKey, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFromContext(ctx context.Context) domain.Principal {
	if p, ok := ctx.Value(principalKey).(domain.Principal); ok {
		return p
	}
	return ""
}
