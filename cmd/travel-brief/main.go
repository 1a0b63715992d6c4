package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-travel-brief/internal/api"
	"github.com/mr1hm/go-travel-brief/internal/cache"
	"github.com/mr1hm/go-travel-brief/internal/config"
	"github.com/mr1hm/go-travel-brief/internal/connectors"
	"github.com/mr1hm/go-travel-brief/internal/fusion"
	"github.com/mr1hm/go-travel-brief/internal/logging"
	"github.com/mr1hm/go-travel-brief/internal/reference"
	"github.com/mr1hm/go-travel-brief/internal/repository"
	"github.com/mr1hm/go-travel-brief/internal/resolver"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := openRepository(cfg.DB)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	refs := reference.Open(cfg.Reference.CitiesPath, cfg.Reference.AreasPath)
	slog.Info("reference data loaded", "cities", refs.CityCount())

	store, closeCache := openCache(cfg.Cache)
	defer closeCache()

	res := resolver.New(db, refs)

	weather := connectors.NewWeatherClient(connectors.WeatherConfig{
		GeocodingURL:  cfg.Upstream.GeocodingURL,
		ForecastURL:   cfg.Upstream.ForecastURL,
		AirQualityURL: cfg.Upstream.AirQualityURL,
		Timeout:       cfg.Upstream.Timeout,
		CacheTTL:      cfg.Cache.WeatherTTL,
	}, store, res)
	news := connectors.NewNewsClient(connectors.NewsConfig{
		FeedURL:  cfg.Upstream.NewsFeedURL,
		Timeout:  cfg.Upstream.Timeout,
		CacheTTL: cfg.Cache.NewsTTL,
	}, store)
	narrator := connectors.NewNarrativeClient(connectors.NarrativeConfig{
		BaseURL:   cfg.GenAI.BaseURL,
		APIKey:    cfg.GenAI.APIKey,
		Model:     cfg.GenAI.Model,
		MaxTokens: cfg.GenAI.MaxTokens,
		Timeout:   cfg.GenAI.Timeout,
	})
	if cfg.GenAI.APIKey == "" {
		slog.Warn("GENAI_API_KEY not set, narratives disabled")
	}

	svc := fusion.NewService(fusion.Deps{
		Resolver:  res,
		Ranked:    db,
		Places:    refs,
		Weather:   weather,
		Summaries: connectors.NewSummaryClient(cfg.Upstream.WikipediaURL, cfg.Upstream.Timeout),
		News:      news,
		Narrator:  narrator,
	})

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.RouterConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		RateLimitRPS: cfg.Server.RateLimitRPS,
	}, api.NewHandler(svc, refs))

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

func openRepository(cfg config.DatabaseConfig) (*repository.Store, error) {
	if cfg.Driver == "postgres" {
		return repository.NewPostgresDB(cfg.URL)
	}
	return repository.NewSQLiteDB(cfg.Path)
}

// openCache falls back to the in-process cache when redis is unreachable.
func openCache(cfg config.CacheConfig) (cache.Cache, func()) {
	memory := cache.NewMemory(cfg.MaxEntries)
	if cfg.Backend != "redis" {
		return memory, func() {}
	}

	r := cache.NewRedis(cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   "travel-brief:",
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx); err != nil {
		slog.Warn("redis unavailable, using in-memory cache", "addr", cfg.RedisAddr, "error", err)
		r.Close()
		return memory, func() {}
	}

	slog.Info("using redis cache", "addr", cfg.RedisAddr)
	return r, func() {
		if err := r.Close(); err != nil {
			slog.Error("error closing redis", "error", err)
		}
	}
}
