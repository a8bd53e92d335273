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

	"github.com/atlas-erp/atlas-console/internal/app"
	"github.com/atlas-erp/atlas-console/internal/mockapi"
	"github.com/atlas-erp/atlas-console/internal/platform/cache"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	store := mockapi.NewStore()
	if err := mockapi.Seed(store); err != nil {
		logger.Error("seed fixtures", slog.Any("error", err))
		os.Exit(1)
	}
	tokens := mockapi.NewTokenStore(redisClient, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	server := mockapi.NewServer(logger, store, tokens)

	httpServer := &http.Server{
		Addr:         cfg.MockAddr,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("mock api listening", slog.String("addr", cfg.MockAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}
