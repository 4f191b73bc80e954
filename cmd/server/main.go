package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cloud-ru/erp-finance-summary/internal/access"
	"github.com/cloud-ru/erp-finance-summary/internal/config"
	"github.com/cloud-ru/erp-finance-summary/internal/httpapi"
	"github.com/cloud-ru/erp-finance-summary/internal/logger"
	"github.com/cloud-ru/erp-finance-summary/internal/tools"
	"github.com/cloud-ru/erp-finance-summary/internal/tracing"
	"github.com/cloud-ru/erp-finance-summary/internal/upstream"
	"github.com/cloud-ru/erp-finance-summary/internal/validators"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	format := cfg.LogFormat
	if cfg.IsProduction() {
		format = "json"
	}
	logr := logger.New(cfg.LogLevel, format)
	defer func() { _ = logr.Sync() }()

	tracer, shutdownTracing, err := tracing.Init(ctx, cfg.OTELServiceName, cfg.OTELEndpoint, logr)
	if err != nil {
		logr.Fatal("init tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logr.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logr.Warn("redis ping", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logr.Warn("redis close", zap.Error(err))
		}
	}()

	limits := validators.LimitsFrom(cfg)
	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, logr.Named("upstream"))
	resolver := access.NewResolver(redisClient, client, cfg.AccessCacheTTL, logr.Named("access"))
	registry := tools.NewRegistry(limits, tracer)
	handler := httpapi.NewHandler(logr.Named("http"), limits, registry, client, resolver)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpapi.NewRouter(httpapi.RouterParams{Logger: logr, Config: cfg, Handler: handler}),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logr.Info("starting http server",
			zap.String("addr", cfg.Addr()),
			zap.Strings("tools", registry.Names()),
			zap.String("upstream", cfg.UpstreamBaseURL),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("http server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown", zap.Error(err))
	}
}
