package middleware

import (
	"net/http"
	"strings"

	"github.com/medreportai/companion/internal/domain/entities"
	"github.com/medreportai/companion/internal/infrastructure/identity"
)

// IdentityMiddleware attaches the acting user from request headers to
// the context. Requests without identity headers pass through
// untouched; the identity provider decides whether a fallback applies.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.Header.Get("X-User-Email"))
		if email != "" {
			principal := &entities.Principal{
				UID:   email,
				Email: email,
				Name:  strings.TrimSpace(r.Header.Get("X-User-Name")),
			}
			r = r.WithContext(identity.WithPrincipal(r.Context(), principal))
		}
		next.ServeHTTP(w, r)
	})
}
