// Command jr-it-news runs the top-story cache engine behind a single
// read-only HTTP surface: periodic background warmup publishes a
// snapshot, and the read path serves out of it with synchronous
// rebuild-on-miss and stale-fallback under upstream failure.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jnrpurin/jr-it-news/internal/config"
	"github.com/jnrpurin/jr-it-news/internal/fanout"
	"github.com/jnrpurin/jr-it-news/internal/httpapi"
	"github.com/jnrpurin/jr-it-news/internal/idlist"
	"github.com/jnrpurin/jr-it-news/internal/itemcache"
	"github.com/jnrpurin/jr-it-news/internal/logging"
	"github.com/jnrpurin/jr-it-news/internal/reader"
	"github.com/jnrpurin/jr-it-news/internal/store"
	"github.com/jnrpurin/jr-it-news/internal/upstream"
	"github.com/jnrpurin/jr-it-news/internal/warmup"
)

func main() {
	logging.Init(logging.FromEnv())
	log := logging.Named("main")

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cacheStore := newStore(cfg)
	if closer, ok := cacheStore.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing cache store")
			}
		}()
	}

	client := upstream.New(upstream.Config{
		UserAgent:           cfg.UserAgent,
		PerAttemptTimeout:   cfg.PerAttemptTimeout,
		Retries:             cfg.Retries,
		BreakerThreshold:    cfg.BreakerThreshold,
		BreakerOpenDuration: cfg.BreakerOpenDuration,
	}, http.DefaultClient)

	items := itemcache.New(cacheStore, client, cfg.HNBaseURL)
	fo := fanout.New(items, cfg.FanoutConcurrency)
	ids := idlist.New(cacheStore, client, cfg.HNBaseURL)
	orch := warmup.New(ids, fo, cacheStore, cfg.MaxStories, cfg.StoreTTL())
	rd := reader.New(cacheStore, orch, cfg.CacheDuration)

	go orch.Run(ctx, cfg.StartupDelay, cfg.RefreshInterval, cfg.ErrorBackoff)

	srv := httpapi.New(rd, cfg.MaxStories)
	httpSrv := &http.Server{
		Addr:         addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("error during HTTP server shutdown")
		}
	}()

	log.Info().Str("addr", httpSrv.Addr).Msg("jr-it-news listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server exited with error")
	}
	log.Info().Msg("shutdown complete")
}

func newStore(cfg config.Config) store.Store {
	if cfg.RedisAddr != "" {
		return store.NewRedis(cfg.RedisAddr)
	}
	return store.NewMemory()
}

func addr() string {
	if v := os.Getenv("JR_IT_NEWS_ADDR"); v != "" {
		return v
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return ":" + port
}
