package gateway

import (
	"net/http"
	"strings"

	"github.com/dharohar/dharohar/internal/session"
)

// RefreshSession renews the sliding session window on every request
// that carries a valid token. An invalid or absent token is not an
// error here; the request continues anonymous and the guard answers
// with 401 downstream. The renewed Set-Cookie lands on the same header
// map as the security headers, so neither set clobbers the other.
func RefreshSession(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The auth handlers set or clear the cookie themselves; a
			// concurrent refresh would race the logout clear.
			if !strings.HasPrefix(r.URL.Path, "/api/auth/") {
				sessions.Refresh(r, w)
			}
			next.ServeHTTP(w, r)
		})
	}
}
