package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dharohar/dharohar/internal/session"
	"github.com/dharohar/dharohar/internal/token"
	"github.com/dharohar/dharohar/internal/user"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newTestSessions(t *testing.T) *session.Manager {
	t.Helper()
	codec, err := token.NewCodec("test-secret-key", 7*24*time.Hour, "dharohar")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return session.NewManager(codec, session.NewCookieStore("session", 7*24*time.Hour, false), zap.NewNop())
}

func sessionCookie(t *testing.T, sessions *session.Manager) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := sessions.Create(rec, "user-1", "asha@example.com", user.RoleUser); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return rec.Result().Cookies()[0]
}

func chain(h http.Handler, mws []func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func TestSecurityHeadersApplied(t *testing.T) {
	h := SecurityHeaders(true)(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/yatras/", nil))

	for _, key := range []string{
		"Content-Security-Policy",
		"X-Frame-Options",
		"X-Content-Type-Options",
		"Referrer-Policy",
		"Strict-Transport-Security",
	} {
		if rec.Header().Get(key) == "" {
			t.Fatalf("missing %s header", key)
		}
	}
}

func TestClientIPTrustsProxyOnlyWhenConfigured(t *testing.T) {
	var seen string
	record := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClientIPFromContext(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	ClientIP(true)(record).ServeHTTP(httptest.NewRecorder(), r)
	if seen != "203.0.113.9" {
		t.Fatalf("trusted proxy: expected forwarded ip, got %q", seen)
	}

	ClientIP(false)(record).ServeHTTP(httptest.NewRecorder(), r)
	if seen != "192.0.2.1" {
		t.Fatalf("untrusted proxy: expected remote addr, got %q", seen)
	}
}

func TestBotCheck(t *testing.T) {
	h := BotCheck("X-Bot-Score", 30, zap.NewNop())(okHandler())

	// Missing signal fails open.
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("missing score: expected 200, got %d", rec.Code)
	}

	// Score below threshold fails closed on a sensitive path.
	r = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.Header.Set("X-Bot-Score", "5")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("low score: expected 403, got %d", rec.Code)
	}

	// Low score on a non-sensitive path is ignored.
	r = httptest.NewRequest(http.MethodGet, "/api/yatras/", nil)
	r.Header.Set("X-Bot-Score", "5")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("non-sensitive path: expected 200, got %d", rec.Code)
	}

	// Healthy score passes.
	r = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.Header.Set("X-Bot-Score", "90")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("high score: expected 200, got %d", rec.Code)
	}
}

func TestRateLimitBucketsAndMetadata(t *testing.T) {
	policy := RateLimitPolicy{AuthRPM: 2, UploadRPM: 100, APIRPM: 100, GeneralRPM: 100}
	h := RateLimit(policy, nil)(okHandler())

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		h.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on the third auth request, got %d", last.Code)
	}
	if last.Header().Get("X-RateLimit-Limit") == "" {
		t.Fatal("expected X-RateLimit-Limit header")
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Limit int `json:"limit"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(last.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode 429 body: %v", err)
	}
	if body.Error.Code != "rate_limited" {
		t.Fatalf("expected rate_limited, got %q", body.Error.Code)
	}
	if body.Error.Details.Limit != 2 {
		t.Fatalf("expected limit metadata 2, got %d", body.Error.Details.Limit)
	}

	// The auth budget being spent must not affect the api bucket.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/yatras/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("api bucket should be untouched, got %d", rec.Code)
	}
}

func TestRedirectRules(t *testing.T) {
	sessions := newTestSessions(t)
	h := Redirects(sessions)(okHandler())

	// Anonymous on a protected page bounces to login.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected 302 to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	// Signed-in on a public-only page bounces to the dashboard.
	r := httptest.NewRequest(http.MethodGet, "/login", nil)
	r.AddCookie(sessionCookie(t, sessions))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("expected 302 to /dashboard, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	// API paths are never redirected.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/media/mine", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("api path should pass through, got %d", rec.Code)
	}
}

func TestFullChainMergesRefreshedCookieWithSecurityHeaders(t *testing.T) {
	sessions := newTestSessions(t)
	mws := Middleware(Options{
		TrustProxy:        false,
		HSTS:              true,
		BotScoreHeader:    "X-Bot-Score",
		BotScoreThreshold: 30,
		Policy:            RateLimitPolicy{AuthRPM: 100, UploadRPM: 100, APIRPM: 100, GeneralRPM: 100},
		AllowedOrigins:    []string{"*"},
		Sessions:          sessions,
		Logger:            zap.NewNop(),
	})
	h := chain(okHandler(), mws)

	r := httptest.NewRequest(http.MethodGet, "/api/yatras/", nil)
	r.AddCookie(sessionCookie(t, sessions))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Fatal("security headers dropped by the chain")
	}
	setCookie := rec.Header().Get("Set-Cookie")
	if !strings.HasPrefix(setCookie, "session=") {
		t.Fatalf("expected refreshed session cookie, got %q", setCookie)
	}
}

func TestRefreshSkipsAuthRoutes(t *testing.T) {
	sessions := newTestSessions(t)
	h := RefreshSession(sessions)(okHandler())

	r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	r.AddCookie(sessionCookie(t, sessions))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("refresh must not race the auth handlers' own cookie writes")
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]bucket{
		"/api/auth/login":    bucketAuth,
		"/login":             bucketAuth,
		"/api/media":         bucketUpload,
		"/api/media/m1":      bucketUpload,
		"/api/yatras/":       bucketAPI,
		"/api/comments/c1":   bucketAPI,
		"/dashboard":         bucketGeneral,
		"/healthz":           bucketGeneral,
	}
	for path, want := range cases {
		if got := classify(path); got != want {
			t.Fatalf("classify(%q) = %v, want %v", path, got, want)
		}
	}
}
