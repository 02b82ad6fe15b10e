package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Simplici0/juzely/internal/config"
	"github.com/Simplici0/juzely/internal/db"
	"github.com/Simplici0/juzely/internal/logger"
	"github.com/Simplici0/juzely/internal/metrics"
	"github.com/Simplici0/juzely/internal/migrations"
	"github.com/Simplici0/juzely/internal/pricing"
	"github.com/Simplici0/juzely/internal/seed"
	"github.com/Simplici0/juzely/internal/sizing"
	"github.com/Simplici0/juzely/internal/store"
)

const serviceName = "juzely"

type server struct {
	log      *logger.Logger
	auth     *authService
	db       *sql.DB
	store    store.Manager
	calc     *pricing.Calculator
	registry *sizing.Registry
	bounds   sizing.Bounds
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "server.stopped", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database); err != nil {
			return fmt.Errorf("run database migrations: %w", err)
		}
	}

	stats, err := seed.Run(database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{"inserts": stats.Inserts, "updates": stats.Updates}), "seed.complete")

	pricingCfg, err := pricing.Load(cfg.PricingConfigPath)
	if err != nil {
		return fmt.Errorf("load pricing config: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	quotes, err := openStore(ctx, cfg, database)
	if err != nil {
		return err
	}
	instrumented := store.NewInstrumented(quotes, m)
	defer instrumented.Close()

	if retention := cfg.Retention(); retention > 0 {
		purged, err := instrumented.PurgeOlderThan(ctx, retention)
		if err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "store.purge_failed")
		} else {
			logg.Info(logg.WithField(ctx, "purged", purged), "store.purged")
		}
	}

	srv := &server{
		log:      logg,
		auth:     newAuthService(database, cfg.SessionSecret),
		db:       database,
		store:    instrumented,
		calc:     pricing.NewCalculator(pricingCfg),
		registry: sizing.NewRegistry(),
		bounds:   sizing.Bounds{Min: cfg.MeasurementMinCM, Max: cfg.MeasurementMaxCM},
		metrics:  m,
		gatherer: reg,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithFields(ctx, map[string]any{"addr": httpServer.Addr, "store": cfg.StoreDriver}), "server.listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logg.Info(shutdownCtx, "server.shutdown")
	return httpServer.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config, database *sql.DB) (store.Manager, error) {
	switch strings.ToLower(cfg.StoreDriver) {
	case config.StoreDriverRedis:
		s, err := store.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return s, nil
	default:
		return store.NewSQLite(database), nil
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogging(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Get("/garments", s.handleGarments)
		r.Get("/garments/{garment}/measurements", s.handleMeasurements)
		r.Get("/garments/{garment}/templates/{fit}", s.handleTemplate)
		r.Get("/pricing/options", s.handlePricingOptions)

		r.Post("/size-matrix/cell", s.handleSetCell)
		r.Post("/size-matrix/reset", s.handleResetMatrix)

		r.Post("/quotes/calculate", s.handleCalculate)
		r.Get("/quotes/quick", s.handleQuickQuote)
		r.Get("/quotes", s.handleListQuotes)
		r.Get("/quotes/stats", s.handleQuoteStats)
		r.Get("/quotes/{id}", s.handleGetQuote)
		r.Get("/quotes/{id}/text", s.handleQuoteText)
		r.Get("/quotes/{id}/xlsx", s.handleQuoteXLSX)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Post("/quotes", s.handleSaveQuote)
			r.Patch("/quotes/{id}", s.handleUpdateQuote)
			r.Delete("/quotes/{id}", s.handleDeleteQuote)
		})
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
