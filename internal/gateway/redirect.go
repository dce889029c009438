package gateway

import (
	"net/http"
	"strings"

	"github.com/dharohar/dharohar/internal/session"
)

var protectedPagePrefixes = []string{"/dashboard", "/admin", "/account"}

var publicOnlyPages = map[string]struct{}{
	"/":       {},
	"/login":  {},
	"/signup": {},
}

func protectedPage(path string) bool {
	for _, p := range protectedPagePrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Redirects applies the page-level routing rules: anonymous visitors
// bounce off protected areas to the login page, and signed-in users
// skip the public-only pages straight to their dashboard. API routes
// are untouched; the guard answers those with 401/403 instead.
func Redirects(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				authed := sessions.FromRequest(r) != nil
				if !authed && protectedPage(r.URL.Path) {
					http.Redirect(w, r, "/login", http.StatusFound)
					return
				}
				if authed {
					if _, ok := publicOnlyPages[r.URL.Path]; ok {
						http.Redirect(w, r, "/dashboard", http.StatusFound)
						return
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
