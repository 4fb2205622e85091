package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mosolopay/mosolo/internal/adapter/http/handler"
	"github.com/mosolopay/mosolo/internal/adapter/http/middleware"
	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/infrastructure/auth"
	"github.com/mosolopay/mosolo/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler    *handler.AccountHandler
	WithdrawalHandler *handler.WithdrawalHandler
	DepositHandler    *handler.DepositHandler
	TransferHandler   *handler.TransferHandler
	FeeHandler        *handler.FeeHandler
	LedgerHandler     *handler.LedgerHandler
	AuditHandler      *handler.AuditHandler
	HealthHandler     *handler.HealthHandler
	IdempotencyStore  usecase.IdempotencyStore
	JWTManager        *auth.JWTManager
	AuthEnabled       bool
	RateLimiter       *middleware.RateLimiter
	Logger            *middleware.LoggingMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	if cfg.Logger != nil {
		r.Use(cfg.Logger.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}
	r.Use(middleware.Metrics)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthEnabled && cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/balance", cfg.LedgerHandler.GetBalance)
			r.Get("/{id}/entries", cfg.LedgerHandler.ListEntries)
			r.Get("/{id}/transfers", cfg.TransferHandler.ListByAccount)
			r.Post("/{id}/commission/sweep", cfg.LedgerHandler.SweepCommission)
			if cfg.AuthEnabled && cfg.JWTManager != nil {
				r.With(middleware.RequireRole(domain.RoleAdmin)).
					Post("/{id}/adjust", cfg.LedgerHandler.Adjust)
			} else {
				r.Post("/{id}/adjust", cfg.LedgerHandler.Adjust)
			}
		})

		// Withdrawal requests
		r.Route("/withdrawals", func(r chi.Router) {
			r.Post("/", cfg.WithdrawalHandler.Create)
			r.Get("/{id}", cfg.WithdrawalHandler.Get)
			r.Post("/{id}/confirm", cfg.WithdrawalHandler.Confirm)
			r.Post("/{id}/reject", cfg.WithdrawalHandler.Reject)
		})
		r.Get("/clients/{id}/withdrawals", cfg.WithdrawalHandler.ListByClient)

		// Deposits
		r.Post("/deposits", cfg.DepositHandler.Create)

		// Transfers
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Create)
			r.Get("/{id}", cfg.TransferHandler.Get)
		})

		// Fee quotes
		r.Post("/fees/quote", cfg.FeeHandler.Quote)

		// Audit trail
		if cfg.AuditHandler != nil {
			r.Get("/audit", cfg.AuditHandler.List)
		}
	})

	return r
}
