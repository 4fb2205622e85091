package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mosolopay/mosolo/internal/adapter/http/handler"
	apimiddleware "github.com/mosolopay/mosolo/internal/adapter/http/middleware"
	"github.com/mosolopay/mosolo/internal/usecase"
	"github.com/mosolopay/mosolo/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_LogsRequests(t *testing.T) {
	var buf bytes.Buffer
	logMW := apimiddleware.NewLoggingMiddleware(zerolog.New(&buf))
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Logger = logMW
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	logged := buf.String()
	if !strings.Contains(logged, "request completed") {
		t.Fatalf("expected a request log line, got %q", logged)
	}
	if !strings.Contains(logged, `"path":"/health"`) {
		t.Fatalf("expected the request path to be logged, got %q", logged)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"amount":1000,"sender_territory":"CD","recipient_territory":"CD","actor_role":"user"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fees/quote", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/{id}",
		"POST /api/v1/accounts/{id}/commission/sweep",
		"POST /api/v1/withdrawals/",
		"POST /api/v1/withdrawals/{id}/confirm",
		"POST /api/v1/withdrawals/{id}/reject",
		"GET /api/v1/clients/{id}/withdrawals",
		"POST /api/v1/deposits",
		"POST /api/v1/transfers/",
		"POST /api/v1/fees/quote",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	accounts := mocks.NewMockAccountRepository()
	withdrawals := mocks.NewMockWithdrawalRepository()
	transfers := mocks.NewMockTransferRepository()
	quotas := mocks.NewMockQuotaRepository()
	entries := mocks.NewMockEntryRepository()
	outbox := mocks.NewMockOutboxRepository()
	audits := mocks.NewMockAuditRepository()
	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	codeGen := mocks.NewMockCodeGenerator()
	clock := mocks.NewMockClock(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	accountUC := usecase.NewAccountUseCase(accounts, nil, idGen, clock, nil)
	withdrawalUC := usecase.NewWithdrawalUseCase(
		txManager, accounts, withdrawals, entries, outbox, audits,
		idGen, codeGen, clock, nil, nil,
	)
	depositUC := usecase.NewDepositUseCase(
		txManager, accounts, quotas, entries, outbox, audits,
		idGen, clock, time.UTC, nil, nil,
	)
	transferUC := usecase.NewTransferUseCase(
		txManager, accounts, transfers, entries, outbox,
		idGen, clock, nil, "platform-1", nil,
	)
	feeUC := usecase.NewFeeUseCase(nil)
	ledgerUC := usecase.NewLedgerUseCase(
		txManager, accounts, entries, audits, idGen, clock, nil, nil,
	)

	cfg := RouterConfig{
		AccountHandler:    handler.NewAccountHandler(accountUC),
		WithdrawalHandler: handler.NewWithdrawalHandler(withdrawalUC),
		DepositHandler:    handler.NewDepositHandler(depositUC),
		TransferHandler:   handler.NewTransferHandler(transferUC),
		FeeHandler:        handler.NewFeeHandler(feeUC),
		LedgerHandler:     handler.NewLedgerHandler(ledgerUC),
		AuditHandler:      handler.NewAuditHandler(audits),
		HealthHandler:     &handler.HealthHandler{},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
