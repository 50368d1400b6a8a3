package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/api"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/config"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/database"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/logging"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/repository"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/service"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/version"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", version.Version).Str("cache", cfg.Cache.Backend).Msg("starting gold price tracker")

	store, db, closer, err := openCache(context.Background(), cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open cache")
	}
	defer closer.Close()

	client := yahoo.NewFinanceClient(yahoo.DefaultBaseURL, cfg.Source.Timeout)
	adapter := service.NewSourceAdapter(client, cfg.Source.Timeout)

	priceService := service.NewPriceService(store, adapter, service.PriceConfig{
		Symbol:        cfg.Source.GoldSymbol,
		RateSymbol:    cfg.Source.FXSymbol,
		LookbackRange: cfg.Source.LookbackRange,
		RateRange:     cfg.Source.FXRange,
		TTL:           cfg.Cache.TTL,
		WindowDays:    cfg.View.WindowDays,
		PageSize:      cfg.View.PageSize,
		GramsPerOunce: cfg.View.Grams(),
	})
	systemService := service.NewSystemService(priceService, cfg.Cache.Backend, db)

	// Create router
	router := api.NewRouter(priceService, systemService, cfg.CORS.AllowedOrigins)

	// Create HTTP server. The write timeout leaves room for a refresh that
	// runs the gold and exchange-rate queries to their timeout.
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + cfg.Source.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server exited")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openCache builds the configured cache store. db is non-nil only for the
// SQLite backend.
func openCache(ctx context.Context, cfg config.CacheConfig) (repository.CacheStore, *sql.DB, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return repository.NewMemoryCache(), nil, nopCloser{}, nil

	case config.BackendFile:
		log.Info().Str("path", cfg.File).Msg("using file cache")
		return repository.NewFileCache(cfg.File), nil, nopCloser{}, nil

	case config.BackendSQLite:
		db, err := database.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		log.Info().Str("path", cfg.DBPath).Msg("connected to database")
		return repository.NewSQLiteCache(db), db, db, nil

	case config.BackendRedis:
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := repository.NewRedisCache(pingCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKey)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Str("addr", cfg.RedisAddr).Str("key", cfg.RedisKey).Msg("connected to redis")
		return rc, nil, rc, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
