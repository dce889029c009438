package gateway

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/dharohar/dharohar/internal/session"
)

// Options configures the edge chain. NewCounter may be nil, in which
// case each limiter keeps its own in-memory counter.
type Options struct {
	TrustProxy        bool
	HSTS              bool
	BotScoreHeader    string
	BotScoreThreshold int
	Policy            RateLimitPolicy
	NewCounter        func(bucket string) httprate.LimitCounter
	AllowedOrigins    []string
	Sessions          *session.Manager
	Logger            *zap.Logger
}

// Middleware returns the edge chain in its required order: client
// identity, security headers, CORS, bot check, rate limiting, page
// redirects, session refresh. Rejections short-circuit; nothing past
// this chain sees a rejected request.
func Middleware(opts Options) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		ClientIP(opts.TrustProxy),
		SecurityHeaders(opts.HSTS),
		cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		BotCheck(opts.BotScoreHeader, opts.BotScoreThreshold, opts.Logger),
		RateLimit(opts.Policy, opts.NewCounter),
		Redirects(opts.Sessions),
		RefreshSession(opts.Sessions),
	}
}
