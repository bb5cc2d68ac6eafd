package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/ledgerbook/internal/adapter/http/handler"
	"github.com/iho/ledgerbook/internal/adapter/http/middleware"
	"github.com/iho/ledgerbook/internal/usecase"
)

// RouterConfig holds dependencies for the router.
// Optional parts (metrics, rate limiting, idempotency, auth) are skipped when nil.
type RouterConfig struct {
	LedgerHandler      *handler.LedgerHandler
	LettrageHandler    *handler.LettrageHandler
	TransactionHandler *handler.TransactionHandler
	HealthHandler      *handler.HealthHandler

	Logger         zerolog.Logger
	Metrics        middleware.RequestObserver
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	TokenVerifier middleware.TokenVerifier
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
			r.Use(middleware.RequireWriter)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// General ledger
		r.Route("/accounts/{code}", func(r chi.Router) {
			r.Get("/ledger", cfg.LedgerHandler.GetLedger)
			r.Post("/lettrages", cfg.LettrageHandler.Apply)
			r.Delete("/lettrages/{lettrage}", cfg.LettrageHandler.Remove)
		})

		r.Post("/pieces", cfg.LedgerHandler.PostPiece)
		r.Get("/pieces/{piece}/entries", cfg.LedgerHandler.GetPiece)

		// Bank statements
		r.Route("/bank-accounts/{account}", func(r chi.Router) {
			r.Get("/transactions", cfg.TransactionHandler.List)
			r.Post("/statements", cfg.TransactionHandler.Import)
		})
	})

	return r
}
