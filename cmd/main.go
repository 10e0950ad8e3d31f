// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/eventhub/internal/auth"
	"github.com/Shivanand-hulikatti/eventhub/internal/cache"
	"github.com/Shivanand-hulikatti/eventhub/internal/config"
	"github.com/Shivanand-hulikatti/eventhub/internal/database"
	"github.com/Shivanand-hulikatti/eventhub/internal/handler"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository"
	"github.com/Shivanand-hulikatti/eventhub/internal/service"
	"github.com/Shivanand-hulikatti/eventhub/internal/ticket"
	"github.com/sirupsen/logrus"
)

// eventCache is the cache surface main needs: the service contract plus a
// health check.
type eventCache interface {
	service.EventCache
	handler.Pinger
}

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	// ── 1. Choose the store ───────────────────────────────────────────────
	var (
		events   service.EventStore
		bookings service.BookingStore
	)
	switch cfg.Store {
	case config.StoreMemory:
		store := repository.NewMemoryStore()
		events, bookings = store.Events(), store.Bookings()
		logger.Warn("using in-memory store; data is lost on restart")
	default:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.WithError(err).Fatal("database")
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			logger.WithError(err).Fatal("database migration")
		}
		events = repository.NewEventRepository(pool, logger)
		bookings = repository.NewBookingRepository(pool, logger)
		logger.Info("connected to PostgreSQL")
	}

	// ── 2. Optional Redis cache ───────────────────────────────────────────
	var eventsCache eventCache = cache.Nop{}
	if cfg.RedisURL != "" {
		rc := cache.NewRedisClient(cfg.RedisURL)
		defer rc.Close()
		c := cache.NewEventCache(rc, cfg.CacheTTL)
		if err := c.Ping(ctx); err != nil {
			logger.WithError(err).Warn("redis unreachable at startup; reads fall through to the store")
		}
		eventsCache = c
	}

	// ── 3. Wire up layers ────────────────────────────────────────────────
	eventSvc := service.NewEventService(events, eventsCache, logger)
	bookingSvc := service.NewBookingService(bookings, events, eventsCache, logger)
	paymentSvc := service.NewPaymentService(bookingSvc, logger)

	router := handler.NewRouter(handler.Deps{
		Events:        eventSvc,
		Bookings:      bookingSvc,
		Payments:      paymentSvc,
		Tickets:       ticket.NewGenerator(cfg.TicketSecret),
		Auth:          auth.New(cfg.JWTSecret, logger),
		Health:        eventsCache,
		Logger:        logger,
		CORSOrigins:   cfg.CORSOrigins,
		EnableMetrics: cfg.EnableMetrics,
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		logger.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
		return
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.IsDevelopment() {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
