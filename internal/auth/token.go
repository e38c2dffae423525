package auth

import (
	"net/http"
	"strings"
)

const CookieName = "admin_token"

// ExtractAccessToken reads the bearer token from the Authorization header,
// falling back to the admin_token cookie for browser sessions.
func ExtractAccessToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authHeader) > len("Bearer ") && strings.EqualFold(authHeader[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}

	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}

	return ""
}
