package middlewares

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dropDatabas3/wso2gate/internal/http/errors"
	"github.com/dropDatabas3/wso2gate/internal/observability/logger"
)

// RequireAPIKey valida la API key administrativa contra su hash bcrypt.
// Con hash vacío el surface administrativo queda deshabilitado (403 siempre).
func RequireAPIKey(keyHash string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHash == "" {
				errors.WriteError(w, errors.ErrForbidden.WithDetail("admin API disabled"))
				return
			}

			key := strings.TrimSpace(r.Header.Get("X-Admin-API-Key"))
			if key == "" {
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("missing X-Admin-API-Key"))
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
				logger.From(r.Context()).Warn("admin API key rejected", logger.Path(r.URL.Path))
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("invalid API key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
