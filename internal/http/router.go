// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-esign-backend/internal/config"
	"github.com/tbourn/go-esign-backend/internal/domain"
	"github.com/tbourn/go-esign-backend/internal/http/handlers"
	"github.com/tbourn/go-esign-backend/internal/http/middleware"
	"github.com/tbourn/go-esign-backend/internal/repo"
	"github.com/tbourn/go-esign-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// The event sink receives lifecycle events after their transaction commits
// (the bus forwards them to the webhook dispatcher); outbound is the targeted
// delivery path used by historical republishing.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter + response compression
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per account/IP, bypass on replay)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, sink services.EventSink, outbound services.Dispatcher, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and gzip compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, accountID, envelopeID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, accountID, envelopeID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token-bucket rate limiter per account/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByAccountOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Account-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Account-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/bus
	envSvc := &services.EnvelopeService{
		DB:                db,
		Events:            sink,
		DefaultExpireDays: cfg.Notify.ExpireAfterDays,
	}
	lockSvc := &services.LockService{
		DB:          db,
		MinDuration: cfg.Lock.MinDuration,
		MaxDuration: cfg.Lock.MaxDuration,
	}
	connSvc := &services.ConnectService{DB: db, Outbound: outbound}
	h := handlers.New(envSvc, lockSvc, connSvc)
	h.IdempotencyTTL = cfg.IdempotencyTTL

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Envelopes
		api.POST("/envelopes", h.CreateEnvelope)
		api.GET("/envelopes", h.ListEnvelopes)
		api.GET("/envelopes/:id", h.GetEnvelope)
		api.DELETE("/envelopes/:id", h.DeleteEnvelope)
		api.GET("/envelopes/:id/recipients", h.ListEnvelopeRecipients)

		// Lifecycle transitions
		api.POST("/envelopes/:id/send", h.SendEnvelope)
		api.POST("/envelopes/:id/void", h.VoidEnvelope)
		api.POST("/envelopes/:id/correct", h.CorrectEnvelope)
		api.POST("/envelopes/:id/resend", h.ResendEnvelope)

		// Recipient actions
		api.POST("/envelopes/:id/recipients/:rid/delivery", h.RecordDelivery)
		api.POST("/envelopes/:id/recipients/:rid/completion", h.RecordCompletion)
		api.POST("/envelopes/:id/recipients/:rid/decline", h.RecordDecline)

		// Edit locks (envelopes and templates share the mechanism)
		api.POST("/envelopes/:id/lock", h.AcquireLock(domain.LockResourceEnvelope))
		api.PUT("/envelopes/:id/lock", h.ExtendLock(domain.LockResourceEnvelope))
		api.DELETE("/envelopes/:id/lock", h.ReleaseLock(domain.LockResourceEnvelope))
		api.GET("/envelopes/:id/lock", h.LockStatus(domain.LockResourceEnvelope))
		api.POST("/templates/:id/lock", h.AcquireLock(domain.LockResourceTemplate))
		api.PUT("/templates/:id/lock", h.ExtendLock(domain.LockResourceTemplate))
		api.DELETE("/templates/:id/lock", h.ReleaseLock(domain.LockResourceTemplate))
		api.GET("/templates/:id/lock", h.LockStatus(domain.LockResourceTemplate))

		// Connect (webhook subscriptions)
		api.POST("/connect", h.CreateConnect)
		api.GET("/connect", h.ListConnect)
		api.GET("/connect/failures", h.ConnectRetryQueue)
		api.GET("/connect/:id", h.GetConnect)
		api.PUT("/connect/:id", h.UpdateConnect)
		api.DELETE("/connect/:id", h.DeleteConnect)
		api.GET("/connect/:id/logs", h.ConnectLogs)
		api.PUT("/connect/envelopes/:id/retry_queue", h.RequeueEnvelope)
		api.PUT("/connect/envelopes/retry_queue", h.RequeueEnvelopes)
		api.POST("/connect/envelopes/publish/historical", h.PublishHistorical)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
