package api

import (
	"context"
	"net/http"

	"github.com/securepass/securepass/auth"
)

type contextKey int

const userKey contextKey = iota

// RequireUser rejects requests without a cached session. Presence of the
// cached identity is the whole check, mirroring the trust boundary of the
// original application. Each authenticated request counts as activity for
// the idle watchdog.
func (a *API) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.auth.CurrentUser(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if a.guard != nil {
			a.guard.Reset()
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) *auth.User {
	user, _ := ctx.Value(userKey).(*auth.User)
	return user
}
