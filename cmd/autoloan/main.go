package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"autoloan/internal/cache"
	"autoloan/internal/catalog"
	"autoloan/internal/catalog/memory"
	"autoloan/internal/catalog/sqlite"
	"autoloan/internal/config"
	apphttp "autoloan/internal/http"
	"autoloan/internal/log"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Preset catalog backend (default: memory).
	var presets catalog.PresetReader
	switch cfg.CatalogBackend {
	case config.CatalogSQLite:
		repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("failed to open sqlite preset catalog",
				log.FieldError, err,
				log.FieldBackend, cfg.CatalogBackend,
				"db_path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		presets = repo
		logger.Info("initialized sqlite preset catalog", log.FieldBackend, cfg.CatalogBackend, "db_path", cfg.SQLiteDBPath)
	default:
		presets = memory.New()
		logger.Info("initialized memory preset catalog", log.FieldBackend, cfg.CatalogBackend)
	}

	// Quote cache backend (default: in-process LRU).
	var quotes cache.Cache[apphttp.QuoteData]
	switch cfg.QuoteCache {
	case config.QuoteCacheOff:
		logger.Info("quote cache disabled")
	case config.QuoteCacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Error("failed to connect to redis quote cache",
				log.FieldError, err,
				"redis_addr", cfg.RedisAddr)
			os.Exit(1)
		}
		defer client.Close()
		quotes = cache.NewRedisCache[apphttp.QuoteData](client, "quote:", cfg.QuoteCacheTTL)
		logger.Info("initialized redis quote cache", "redis_addr", cfg.RedisAddr, "ttl", cfg.QuoteCacheTTL.String())
	default:
		lru := cache.NewLRUCache[apphttp.QuoteData](cfg.QuoteCacheSize, cfg.QuoteCacheTTL)
		manager := cache.NewManager()
		manager.Register(lru)
		manager.StartCleanup(time.Minute)
		defer manager.Stop()
		quotes = lru
		logger.Info("initialized in-memory quote cache", "size", cfg.QuoteCacheSize, "ttl", cfg.QuoteCacheTTL.String())
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:                   ":" + cfg.Port,
		Presets:                presets,
		Quotes:                 quotes,
		Logger:                 logger.WithComponent(log.ComponentHTTP),
		RateLimitPerMinute:     cfg.RateLimitPerMinute,
		AffordabilityThreshold: decimal.NewFromFloat(cfg.AffordabilityThreshold),
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting autoloan server",
			"port", cfg.Port,
			log.FieldBackend, cfg.CatalogBackend,
			"quote_cache", cfg.QuoteCache,
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}
