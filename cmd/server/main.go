// Command server boots the e-sign backend: configuration, structured logging,
// SQLite storage, OpenTelemetry, the lifecycle event bus with its webhook
// dispatcher, the reminder/expiration scheduler, and the Gin HTTP API.
//
// @title        E-Sign Backend API
// @version      1.0
// @description  Multi-tenant envelope signing platform: envelope lifecycle, recipient routing, edit locks, and Connect webhooks.
// @BasePath     /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	_ "github.com/tbourn/go-esign-backend/docs"
	"github.com/tbourn/go-esign-backend/internal/config"
	"github.com/tbourn/go-esign-backend/internal/events"
	httpapi "github.com/tbourn/go-esign-backend/internal/http"
	"github.com/tbourn/go-esign-backend/internal/observability"
	"github.com/tbourn/go-esign-backend/internal/repo"
	"github.com/tbourn/go-esign-backend/internal/services"
	"github.com/tbourn/go-esign-backend/internal/sysutil"
	"github.com/tbourn/go-esign-backend/internal/webhook"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Local development convenience; absence of a .env file is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting e-sign backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(ctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// Lifecycle events flow bus -> dispatcher -> subscriber endpoints.
	bus := events.NewBus(cfg.Webhook.EventBuffer, log.Logger)
	dispatcher := &webhook.Dispatcher{
		DB:                db,
		Client:            &http.Client{Timeout: cfg.Webhook.Timeout},
		Log:               log.Logger,
		Workers:           cfg.Webhook.Workers,
		QueueSize:         cfg.Webhook.EventBuffer,
		DefaultRetryCount: cfg.Webhook.RetryCount,
		DefaultRetryDelay: cfg.Webhook.RetryDelay,
	}
	bus.Register(dispatcher)
	go bus.Run(ctx)
	go dispatcher.Run(ctx)

	// Background reminders, expiration, and lock sweeping.
	locale := language.Make(cfg.Notify.Locale)
	scheduler := &services.Scheduler{
		Notify: &services.NotificationService{
			DB:                   db,
			Mailer:               &services.LogMailer{Log: log.Logger, Locale: locale},
			DefaultDelayDays:     cfg.Notify.ReminderDelayDays,
			DefaultFrequencyDays: cfg.Notify.ReminderFrequencyDays,
			Locale:               locale,
		},
		Envelopes: &services.EnvelopeService{
			DB:                db,
			Events:            bus,
			DefaultExpireDays: cfg.Notify.ExpireAfterDays,
		},
		Locks: &services.LockService{
			DB:          db,
			MinDuration: cfg.Lock.MinDuration,
			MaxDuration: cfg.Lock.MaxDuration,
		},
		Log: log.Logger,
	}
	go scheduler.Run(ctx)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, bus, dispatcher, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("server failed")
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
