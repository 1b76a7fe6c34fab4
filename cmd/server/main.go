// Package main is the entrypoint for the trip planner API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/advisory"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/ai"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/api"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/api/handler"
	mw "github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/api/middleware"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/api/response"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/cache"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/config"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/geo"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/jobs"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/planner"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/restcountries"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/store"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/visa"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	aiProvider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", aiProvider.Name())

	pgStore := store.NewPostgresStore(pool)

	// Agent adapters. The visa and advisory clients degrade to fallback
	// tasks when unconfigured, so missing keys are not fatal here.
	countries := restcountries.NewHTTPClient(cfg.RestCountries.BaseURL, cfg.RestCountries.Timeout)
	resolver := geo.NewResolver(countries, redisCache)
	visaClient := visa.NewHTTPClient(cfg.Visa.BaseURL, cfg.Visa.APIKey, cfg.Visa.Timeout)
	advisoryClient := advisory.NewHTTPClient(cfg.Advisory.BaseURL, cfg.Advisory.APIKey, cfg.Advisory.Model, cfg.Advisory.Timeout)

	aggregator := planner.NewAggregator(resolver, visaClient, advisoryClient, aiProvider, cfg.AI.GenerationTimeout)

	manager := jobs.NewManager(pgStore, redisCache, cfg.Jobs)
	manager.StartSweeper(ctx)

	svc := planner.NewService(pgStore, aggregator, aiProvider, manager)

	deps := api.Dependencies{
		Auth:      mw.NewAuth(pgStore),
		RateLimit: mw.NewRateLimit(redisCache, 60),

		HealthHandler: healthHandler(pgStore, redisCache),

		StartJobHandler: handler.NewStartJobHandler(svc, pgStore),
		GetJobHandler:   handler.NewGetJobHandler(svc),

		CreateTripHandler:  handler.NewCreateTripHandler(pgStore),
		ListTripsHandler:   handler.NewListTripsHandler(pgStore),
		PreviewTripHandler: handler.NewPreviewTripHandler(svc),
		ListTasksHandler:   handler.NewListTasksHandler(pgStore),
		ItineraryHandler:   handler.NewGetItineraryHandler(pgStore),

		CreateKeyHandler: handler.NewCreateKeyHandler(pgStore),
		ListKeysHandler:  handler.NewListKeysHandler(pgStore),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(pgStore),
	}

	router := api.NewRouter(deps)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Let in-flight generation jobs finish writing their terminal state.
	manager.Wait()

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}
		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		if checks["database"] != "ok" || checks["cache"] != "ok" {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}
		response.JSON(w, map[string]any{"status": "ok", "services": checks})
	}
}
