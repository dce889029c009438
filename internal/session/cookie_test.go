package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCookieAttributes(t *testing.T) {
	store := NewCookieStore("session", 7*24*time.Hour, true)

	rec := httptest.NewRecorder()
	store.Write(rec, "tok")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "session" || c.Value != "tok" {
		t.Fatalf("unexpected cookie: %+v", c)
	}
	if !c.HttpOnly {
		t.Fatal("cookie must be HttpOnly")
	}
	if !c.Secure {
		t.Fatal("cookie must be Secure when configured")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("expected SameSite=Lax, got %v", c.SameSite)
	}
	if c.Path != "/" {
		t.Fatalf("expected Path=/, got %q", c.Path)
	}
	if c.MaxAge != 604800 {
		t.Fatalf("expected MaxAge=604800, got %d", c.MaxAge)
	}
}

func TestCookieInsecureOutsideProduction(t *testing.T) {
	store := NewCookieStore("session", time.Hour, false)
	rec := httptest.NewRecorder()
	store.Write(rec, "tok")
	if rec.Result().Cookies()[0].Secure {
		t.Fatal("Secure should follow the production flag")
	}
}

func TestCookieReadAndClear(t *testing.T) {
	store := NewCookieStore("session", time.Hour, false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := store.Read(r); ok {
		t.Fatal("expected no cookie on a bare request")
	}

	r.AddCookie(&http.Cookie{Name: "session", Value: "tok"})
	got, ok := store.Read(r)
	if !ok || got != "tok" {
		t.Fatalf("read = %q, %v", got, ok)
	}

	rec := httptest.NewRecorder()
	store.Clear(rec)
	c := rec.Result().Cookies()[0]
	if c.Value != "" || c.MaxAge >= 0 {
		t.Fatalf("clear should expire the cookie, got %+v", c)
	}
}
