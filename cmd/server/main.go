package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"

	"github.com/mymind1423/interflow-admin/internal/config"
	gateway "github.com/mymind1423/interflow-admin/internal/http"
	"github.com/mymind1423/interflow-admin/internal/metrics"
	"github.com/mymind1423/interflow-admin/internal/notify"
	"github.com/mymind1423/interflow-admin/internal/platform"
	"github.com/mymind1423/interflow-admin/internal/poll"
	"github.com/mymind1423/interflow-admin/internal/session"
)

func main() {
	cfg := config.Load()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Per-request calls forward the caller's own bearer token; background
	// pollers fall back to the service token.
	tokens := platform.FallbackSource{
		Primary:  platform.ContextToken{},
		Fallback: platform.StaticToken(cfg.PlatformServiceToken),
	}
	client := platform.NewClient(cfg.PlatformBaseURL, tokens, &http.Client{Timeout: cfg.PlatformTimeout}, m)
	api := platform.NewAPI(client)

	var sessionStore session.Store = session.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis unreachable, falling back to in-memory sessions", "addr", cfg.RedisAddr, "error", err)
		} else {
			logger.Info("session cache on redis", "addr", cfg.RedisAddr)
			sessionStore = session.NewRedisStore(rdb)
			defer rdb.Close()
		}
	}
	sessions := session.NewManager(api, sessionStore, cfg.SessionCacheTTL)

	livePoller := poll.New("live", cfg.LivePollInterval, api.GetInterviews, logger,
		poll.WithTimeout[[]platform.Interview](cfg.PlatformTimeout),
		poll.WithMetrics[[]platform.Interview](m),
	)
	livePoller.Start(ctx)
	defer livePoller.Stop()

	center := notify.NewCenter(api, cfg.NotificationPollInterval, logger, m)
	center.Start(ctx)
	defer center.Stop()

	srv := gateway.NewServer(cfg, logger, api, sessions, center, livePoller, m)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("admin gateway listening", "addr", cfg.HTTPAddr, "platform", cfg.PlatformBaseURL)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
