package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httprate"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dharohar/dharohar/internal/auth"
	"github.com/dharohar/dharohar/internal/comment"
	"github.com/dharohar/dharohar/internal/config"
	"github.com/dharohar/dharohar/internal/database"
	"github.com/dharohar/dharohar/internal/gateway"
	"github.com/dharohar/dharohar/internal/guard"
	"github.com/dharohar/dharohar/internal/media"
	"github.com/dharohar/dharohar/internal/session"
	"github.com/dharohar/dharohar/internal/token"
	"github.com/dharohar/dharohar/internal/user"
	"github.com/dharohar/dharohar/internal/yatra"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file loaded", zap.Error(err))
	}

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	database.SetMigrationLogger(logger)
	if err := database.Migrate(context.Background(), db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	codec, err := token.NewCodec(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.Issuer)
	if err != nil {
		logger.Fatal("failed to initialize token codec", zap.Error(err))
	}
	cookies := session.NewCookieStore(cfg.Session.CookieName, cfg.Session.TTL, cfg.App.IsProduction())
	sessions := session.NewManager(codec, cookies, logger)

	users := user.NewRepo(db, logger)
	gate := guard.New(sessions, users, logger)

	authHandler := auth.NewHandler(auth.NewService(users, logger), sessions, gate, logger)
	mediaHandler := media.NewHandler(media.NewRepo(db, logger), gate, logger)
	yatraRepo := yatra.NewRepo(db, logger)
	yatraHandler := yatra.NewHandler(yatraRepo, gate, logger)
	commentHandler := comment.NewHandler(comment.NewRepo(db, logger), yatraRepo, gate, logger)

	var newCounter func(bucket string) httprate.LimitCounter
	if cfg.Gateway.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Gateway.RedisAddr})
		defer rdb.Close()
		newCounter = func(bucket string) httprate.LimitCounter {
			return gateway.NewRedisCounter(rdb, "ratelimit:"+bucket)
		}
		logger.Info("rate limiting via shared redis counters", zap.String("addr", cfg.Gateway.RedisAddr))
	}

	router := newRouter(routerDeps{
		cfg:        cfg,
		logger:     logger,
		sessions:   sessions,
		newCounter: newCounter,
		auth:       authHandler,
		media:      mediaHandler,
		yatra:      yatraHandler,
		comment:    commentHandler,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("application started", zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
