// Package main is the entry point for the parking meter API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/parking-meter/internal/activecache"
	"github.com/pkordes/parking-meter/internal/config"
	"github.com/pkordes/parking-meter/internal/handler"
	"github.com/pkordes/parking-meter/internal/metrics"
	"github.com/pkordes/parking-meter/internal/middleware"
	"github.com/pkordes/parking-meter/internal/repo"
	"github.com/pkordes/parking-meter/internal/repo/memrepo"
	"github.com/pkordes/parking-meter/internal/service"
	"github.com/pkordes/parking-meter/migrations"
)

// stores bundles the repositories of whichever backend was selected.
type stores struct {
	zones    repo.ZoneRepo
	vehicles repo.VehicleRepo
	sessions repo.SessionRepo
	close    func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("parking meter exited", "error", err)
		os.Exit(1)
	}
}

// run wires the server and blocks until it is shut down. Errors are returned
// rather than exiting so deferred cleanup always runs.
func run() error {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Storage ----------------------------------------------------------
	st, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.StorageBackend, err)
	}
	defer st.close()

	zoneSvc := service.NewZoneService(st.zones)
	if cfg.ZonesFile != "" {
		zones, err := config.LoadZones(cfg.ZonesFile)
		if err != nil {
			return fmt.Errorf("load zones file %s: %w", cfg.ZonesFile, err)
		}
		if err := zoneSvc.Seed(ctx, zones); err != nil {
			return fmt.Errorf("seed zones: %w", err)
		}
		slog.Info("zones seeded", "count", len(zones), "path", cfg.ZonesFile)
	}

	// --- Metrics ----------------------------------------------------------
	metrics.Init(prometheus.DefaultRegisterer)

	// --- Services ---------------------------------------------------------
	opts := []service.SessionOption{service.WithLogger(logger)}
	if cfg.RedisAddr != "" {
		client, err := activecache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				slog.Warn("redis close failed", "error", err)
			}
		}()
		opts = append(opts, service.WithActiveIndex(activecache.NewStore(client, cfg.ActiveIndexTTL)))
		slog.Info("active-session cache enabled", "addr", cfg.RedisAddr)
	}

	sessionSvc := service.NewSessionService(st.sessions, st.zones, st.vehicles, opts...)
	vehicleSvc := service.NewVehicleService(st.vehicles)
	exportSvc := service.NewExportService(st.sessions, st.zones, st.vehicles)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request, including
	// the user the authenticator resolved.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srv := handler.NewServer(sessionSvc, vehicleSvc, zoneSvc, exportSvc, logger)
	r.Mount("/", handler.NewRouter(srv, middleware.NewAuthenticator([]byte(cfg.JWTSecret)), promhttp.Handler()))

	// --- HTTP Server ------------------------------------------------------
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

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "backend", cfg.StorageBackend)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-stop:
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// openStores connects the configured backend. For Postgres it verifies the
// connection and applies pending migrations before returning.
func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.StorageBackend == config.BackendMemory {
		mem := memrepo.New()
		return stores{
			zones:    mem.Zones(),
			vehicles: mem.Vehicles(),
			sessions: mem.Sessions(),
			close:    func() {},
		}, nil
	}

	// New() does not open connections immediately; the ping does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return stores{}, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return stores{}, err
	}
	slog.Info("database connection established")

	db := stdlib.OpenDBFromPool(pool)
	applied, err := migrations.Up(ctx, db)
	if cerr := db.Close(); cerr != nil {
		slog.Warn("closing migration handle failed", "error", cerr)
	}
	if err != nil {
		pool.Close()
		return stores{}, err
	}
	slog.Info("migrations applied", "count", applied)

	return stores{
		zones:    repo.NewZoneRepo(pool),
		vehicles: repo.NewVehicleRepo(pool),
		sessions: repo.NewSessionRepo(pool),
		close:    pool.Close,
	}, nil
}
