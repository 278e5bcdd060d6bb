package middleware

import (
	"net/http"
	"slices"

	"github.com/pechomax/pechomax-api/internal/auth"
	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/models"
)

// RequireAuth validates the signed session cookie and injects the claims
// into the request context. With roles given, the session must carry one
// of them. The gate trusts the claims as of issuance and does no database
// lookup.
func RequireAuth(signer *auth.CookieSigner, codec *auth.TokenCodec, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil {
				httpapi.WriteError(w, httpapi.E(httpapi.KindUnauthorized, "unauthorized"))
				return
			}
			token, err := signer.Verify(cookie.Value)
			if err != nil {
				httpapi.WriteError(w, httpapi.E(httpapi.KindUnauthorized, "unauthorized"))
				return
			}
			claims, err := codec.Verify(token)
			if err != nil {
				httpapi.WriteError(w, httpapi.E(httpapi.KindUnauthorized, "unauthorized"))
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
				httpapi.WriteError(w, httpapi.E(httpapi.KindUnauthorized, "unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
