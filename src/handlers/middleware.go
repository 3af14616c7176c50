package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/username/dealsync/src/logger"
	"github.com/username/dealsync/src/utils"
)

// TokenAuthMiddleware guards the sync endpoints with a static bearer token.
// There are no user accounts here; the only caller is an operator or a
// scheduler, authenticated the same way the store API authenticates us.
func TokenAuthMiddleware(apiToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.L.Debug("TokenAuthMiddleware: Authorization header missing", "path", r.URL.Path)
				utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(apiToken)) != 1 {
				logger.L.Warn("TokenAuthMiddleware: invalid token", "path", r.URL.Path)
				utils.SendJSONError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
