package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
	"moul.io/chizap"

	"github.com/dharohar/dharohar/internal/auth"
	"github.com/dharohar/dharohar/internal/comment"
	"github.com/dharohar/dharohar/internal/config"
	"github.com/dharohar/dharohar/internal/gateway"
	"github.com/dharohar/dharohar/internal/httpx"
	"github.com/dharohar/dharohar/internal/media"
	"github.com/dharohar/dharohar/internal/session"
	"github.com/dharohar/dharohar/internal/yatra"
)

type routerDeps struct {
	cfg        *config.Config
	logger     *zap.Logger
	sessions   *session.Manager
	newCounter func(bucket string) httprate.LimitCounter
	auth       *auth.Handler
	media      *media.Handler
	yatra      *yatra.Handler
	comment    *comment.Handler
}

func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chizap.New(deps.logger, &chizap.Opts{
		WithReferer:   true,
		WithUserAgent: true,
	}))
	r.Use(middleware.Recoverer)

	// The edge gateway runs before every route; rejections and
	// redirects here never reach a handler.
	r.Use(gateway.Middleware(gateway.Options{
		TrustProxy:        deps.cfg.Gateway.TrustProxy,
		HSTS:              deps.cfg.App.IsProduction(),
		BotScoreHeader:    deps.cfg.Gateway.BotScoreHeader,
		BotScoreThreshold: deps.cfg.Gateway.BotScoreThreshold,
		Policy: gateway.RateLimitPolicy{
			AuthRPM:    deps.cfg.Gateway.AuthRPM,
			UploadRPM:  deps.cfg.Gateway.UploadRPM,
			APIRPM:     deps.cfg.Gateway.APIRPM,
			GeneralRPM: deps.cfg.Gateway.GeneralRPM,
		},
		NewCounter:     deps.newCounter,
		AllowedOrigins: deps.cfg.Gateway.AllowedOrigins,
		Sessions:       deps.sessions,
		Logger:         deps.logger,
	})...)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Mount("/api/auth", deps.auth.Routes())
	r.Mount("/api/media", deps.media.Routes())
	r.Mount("/api/yatras", deps.yatra.Routes(deps.comment.NestedRoutes()))
	r.Mount("/api/comments", deps.comment.Routes())

	return r
}
