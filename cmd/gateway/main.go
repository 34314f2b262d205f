package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/coursehub/gateway/internal/config"
	"github.com/coursehub/gateway/internal/gateway"
	"github.com/coursehub/gateway/internal/metrics"
	"github.com/coursehub/gateway/internal/upstream"
	"github.com/coursehub/gateway/pkg/cache"
	"github.com/coursehub/gateway/pkg/limiter"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	recorder := metrics.NewPrometheusRecorder(prometheus.DefaultRegisterer)

	// The remote tier is optional: without it (or when it is down) the
	// limiter and cache degrade to their in-process fallbacks, which
	// are only approximate across replicas.
	var remoteWindow *limiter.RedisWindow
	var remoteCache *cache.RemoteCache
	if cfg.Redis.Address != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("remote cache unreachable at startup, serving from local tiers until it recovers",
				zap.String("address", cfg.Redis.Address), zap.Error(err))
		}
		cancel()
		remoteWindow = limiter.NewRedisWindow(client, limiter.WithRecorder(recorder))
		remoteCache = cache.NewRemoteCache(client)
	} else {
		logger.Warn("no remote cache configured, rate limits and cache are per-process only")
	}

	lim := limiter.New(remoteWindow, limiter.NewMemoryWindow(), limiter.WithRecorder(recorder))
	tiered := cache.NewTiered(remoteCache, cache.NewLocalCache())

	gw := gateway.New(gateway.Options{
		Store:       upstream.NewHTTPStore(cfg.Backend.DataURL, cfg.Backend.APIKey, cfg.BackendTimeout()),
		Verifier:    upstream.NewHTTPVerifier(cfg.Backend.AuthURL, cfg.BackendTimeout()),
		Limiter:     lim,
		Cache:       tiered,
		Logger:      logger,
		Recorder:    recorder,
		Diagnostics: cfg.Server.Diagnostics,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", gw)
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hygiene sweep for the in-process fallbacks. Expired records are
	// already invisible to reads; this just releases their memory.
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				swept := lim.Local().Sweep() + tiered.Local().Sweep()
				if swept > 0 {
					logger.Debug("swept local stores", zap.Int("removed", swept))
				}
			}
		}
	}()

	go func() {
		logger.Info("gateway listening",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("remote_cache", cfg.Redis.Address != ""))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("gateway stopped")
}
