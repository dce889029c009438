package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// devFallbackSecret keeps local development running without a .env
// file. Load refuses to start with it outside development.
const devFallbackSecret = "dharohar-dev-only-secret-do-not-deploy"

type AppConfig struct {
	Env          string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func (a *AppConfig) IsProduction() bool {
	return a.Env == "production"
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
}

type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Issuer     string
}

// GatewayConfig holds the edge policy knobs. The budgets and the bot
// threshold are tuned values, not protocol invariants, so they stay
// configurable.
type GatewayConfig struct {
	TrustProxy        bool
	BotScoreHeader    string
	BotScoreThreshold int
	AuthRPM           int
	UploadRPM         int
	APIRPM            int
	GeneralRPM        int
	RedisAddr         string
	AllowedOrigins    []string
}

type Config struct {
	App     *AppConfig
	DB      *DBConfig
	Session *SessionConfig
	Gateway *GatewayConfig
}

func Load(logger *zap.Logger) (*Config, error) {
	var errs error

	app := &AppConfig{
		Env:          getString("APP_ENV", "development"),
		Port:         getString("APP_PORT", "8080"),
		ReadTimeout:  getDuration("APP_READ_TIMEOUT", 5*time.Second, &errs),
		WriteTimeout: getDuration("APP_WRITE_TIMEOUT", 10*time.Second, &errs),
		IdleTimeout:  getDuration("APP_IDLE_TIMEOUT", time.Minute, &errs),
	}

	db := &DBConfig{
		DSN:             os.Getenv("POSTGRES_DSN"),
		MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 10, &errs),
		MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5, &errs),
		MaxConnLifetime: getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute, &errs),
	}

	sess := &SessionConfig{
		Secret:     os.Getenv("SESSION_SECRET"),
		TTL:        getDuration("SESSION_TTL", 7*24*time.Hour, &errs),
		CookieName: getString("SESSION_COOKIE_NAME", "session"),
		Issuer:     getString("SESSION_ISSUER", "dharohar"),
	}
	if sess.Secret == "" {
		if app.IsProduction() {
			errs = multierr.Append(errs, errors.New("SESSION_SECRET is required in production"))
		} else {
			logger.Warn("SESSION_SECRET is not set, using the development fallback; sessions signed with it are forgeable and this must never run in production")
			sess.Secret = devFallbackSecret
		}
	}

	gw := &GatewayConfig{
		TrustProxy:        getBool("TRUST_PROXY", false, &errs),
		BotScoreHeader:    getString("BOT_SCORE_HEADER", "X-Bot-Score"),
		BotScoreThreshold: getInt("BOT_SCORE_THRESHOLD", 30, &errs),
		AuthRPM:           getInt("RATE_AUTH_RPM", 10, &errs),
		UploadRPM:         getInt("RATE_UPLOAD_RPM", 20, &errs),
		APIRPM:            getInt("RATE_API_RPM", 120, &errs),
		GeneralRPM:        getInt("RATE_GENERAL_RPM", 300, &errs),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		AllowedOrigins:    splitCSV(getString("CORS_ALLOWED_ORIGINS", "*")),
	}

	if errs != nil {
		return nil, errs
	}
	return &Config{App: app, DB: db, Session: sess, Gateway: gw}, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int, errs *error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = multierr.Append(*errs, errors.New(key+" must be an integer"))
		return fallback
	}
	return n
}

func getBool(key string, fallback bool, errs *error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = multierr.Append(*errs, errors.New(key+" must be a boolean"))
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration, errs *error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = multierr.Append(*errs, errors.New(key+" must be a duration"))
		return fallback
	}
	return d
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
