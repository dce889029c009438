package session

import (
	"net/http"
	"time"
)

// CookieStore binds the signed token to the transport cookie. The
// attribute set is a joint contract: HttpOnly keeps scripts away from
// the token, Secure keeps it off plaintext in production, SameSite=Lax
// blocks cross-site POSTs while leaving top-level navigation alone,
// and MaxAge tracks the token's own validity window.
type CookieStore struct {
	name   string
	ttl    time.Duration
	secure bool
}

func NewCookieStore(name string, ttl time.Duration, secure bool) *CookieStore {
	return &CookieStore{name: name, ttl: ttl, secure: secure}
}

func (s *CookieStore) Name() string {
	return s.name
}

func (s *CookieStore) Write(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *CookieStore) Read(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
