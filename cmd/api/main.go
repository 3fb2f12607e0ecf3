// Package main is the entry point for the Perundhu API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/perundhu/backend/internal/config"
	"github.com/perundhu/backend/internal/handler"
	"github.com/perundhu/backend/internal/middleware"
	"github.com/perundhu/backend/internal/repo"
	"github.com/perundhu/backend/internal/routing"
	"github.com/perundhu/backend/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A .env file is a local-development convenience; in deployment the
	// variables come from the environment and the file is absent.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Repositories and services ----------------------------------------
	locationRepo := repo.NewLocationRepo(pool)
	busRepo := repo.NewBusRepo(pool)
	stopRepo := repo.NewStopRepo(pool)
	exportRepo := repo.NewExportRepo(pool)

	graphCache := routing.NewCache(repo.NewScheduleSource(busRepo, stopRepo), cfg.GraphMaxAge)

	searchOpts := routing.DefaultOptions()
	searchOpts.TransferPenaltyMinutes = cfg.TransferPenaltyMinutes
	searchOpts.PruneFactor = cfg.PruneFactor

	routeSvc := service.NewRouteService(graphCache, locationRepo, searchOpts)
	scheduleSvc := service.NewScheduleService(locationRepo, busRepo, stopRepo, graphCache)
	locationSvc := service.NewLocationService(locationRepo)
	exportSvc := service.NewExportService(exportRepo)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body size cap.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srv := handler.NewServer(routeSvc, scheduleSvc, locationSvc, exportSvc, pool)
	r.Mount("/", srv.Routes())

	// Build the route graph before the first search asks for it. The delay
	// lets the process finish binding its port and settle first; a failed
	// warmup only logs, the next request simply builds on demand.
	warmupCtx, cancelWarmup := context.WithCancel(context.Background())
	defer cancelWarmup()
	go graphCache.WarmUp(warmupCtx, cfg.GraphWarmupDelay)

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
