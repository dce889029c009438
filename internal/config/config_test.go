package config

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("SESSION_SECRET", "")

	cfg, err := Load(zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.App.Env != "development" || cfg.App.Port != "8080" {
		t.Fatalf("unexpected app config: %+v", cfg.App)
	}
	if cfg.Session.Secret != devFallbackSecret {
		t.Fatal("development should fall back to the built-in secret")
	}
	if cfg.Session.TTL != 7*24*time.Hour {
		t.Fatalf("expected 7d session TTL, got %v", cfg.Session.TTL)
	}
	if cfg.Session.CookieName != "session" {
		t.Fatalf("expected cookie name session, got %q", cfg.Session.CookieName)
	}
	if cfg.Gateway.BotScoreThreshold != 30 || cfg.Gateway.AuthRPM != 10 {
		t.Fatalf("unexpected gateway defaults: %+v", cfg.Gateway)
	}
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	if _, err := Load(zap.NewNop()); err == nil {
		t.Fatal("expected an error without SESSION_SECRET in production")
	} else if !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadAcceptsExplicitSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "a-real-secret")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/dharohar")

	cfg, err := Load(zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.Secret != "a-real-secret" {
		t.Fatalf("expected explicit secret, got %q", cfg.Session.Secret)
	}
	if !cfg.App.IsProduction() {
		t.Fatal("expected production mode")
	}
}

func TestLoadAccumulatesErrors(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("RATE_AUTH_RPM", "many")
	t.Setenv("TRUST_PROXY", "maybe")

	_, err := Load(zap.NewNop())
	if err == nil {
		t.Fatal("expected errors for malformed values")
	}
	for _, key := range []string{"SESSION_TTL", "RATE_AUTH_RPM", "TRUST_PROXY"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in %v", key, err)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV("https://dharohar.org, https://admin.dharohar.org ,")
	if len(got) != 2 || got[0] != "https://dharohar.org" || got[1] != "https://admin.dharohar.org" {
		t.Fatalf("splitCSV = %v", got)
	}
}
