package middleware

import (
	"net/http"

	"bookstore-be/internal/auth"
	"bookstore-be/internal/logger"
	"bookstore-be/internal/utils"

	"go.uber.org/zap"
)

// AdminOnly admits requests carrying a valid token with the ADMIN role. The
// verified claims are stored on the request context.
func AdminOnly(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromCtx(r.Context()).With(zap.String("layer", "middleware"), zap.String("path", r.URL.Path))

			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				utils.WriteJSONError(w, r, http.StatusUnauthorized, "Authentication required", nil)
				return
			}

			claims, err := auth.ParseToken(secret, tokenStr)
			if err != nil {
				log.Warn("rejected token", zap.Error(err))
				utils.WriteJSONError(w, r, http.StatusUnauthorized, "Invalid or expired token", nil)
				return
			}

			if !claims.IsAdmin() {
				log.Warn("non-admin access attempt", zap.String("subject", claims.Subject))
				utils.WriteJSONError(w, r, http.StatusForbidden, "Admin access required", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
