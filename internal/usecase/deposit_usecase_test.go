package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/usecase"
	"github.com/mosolopay/mosolo/internal/usecase/mocks"
)

func newDepositUseCase(
	accRepo *mocks.MockAccountRepository,
	quotaRepo *mocks.MockQuotaRepository,
	outboxRepo *mocks.MockOutboxRepository,
	clock *mocks.MockClock,
) *usecase.DepositUseCase {
	return usecase.NewDepositUseCase(
		mocks.NewMockTransactionManager(),
		accRepo,
		quotaRepo,
		mocks.NewMockEntryRepository(),
		outboxRepo,
		mocks.NewMockAuditRepository(),
		mocks.NewMockIDGenerator(),
		clock,
		time.UTC,
		nil,
		nil,
	)
}

func TestDepositUseCase_RecordDeposit(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Seed(&domain.Account{ID: "agent-1", Role: domain.RoleAgent})
	accRepo.Seed(&domain.Account{ID: "client-1", Role: domain.RoleUser})

	quotaRepo := mocks.NewMockQuotaRepository()
	outboxRepo := mocks.NewMockOutboxRepository()
	clock := mocks.NewMockClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))

	uc := newDepositUseCase(accRepo, quotaRepo, outboxRepo, clock)

	input := func(amount int64) usecase.RecordDepositInput {
		return usecase.RecordDepositInput{AgentID: "agent-1", ClientID: "client-1", Amount: amount}
	}

	t.Run("base tier below the quota threshold", func(t *testing.T) {
		result, err := uc.RecordDeposit(context.Background(), input(300_000))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.QuotaJustReached {
			t.Error("quota must not be reached at 300000")
		}
		if result.Commission != 1_500 {
			t.Errorf("expected commission 1500 at 0.5%%, got %d", result.Commission)
		}
		if result.ClientBalance != 300_000 {
			t.Errorf("expected client balance 300000, got %d", result.ClientBalance)
		}
	})

	t.Run("deposit that reaches the quota earns the bonus rate", func(t *testing.T) {
		clock.Set(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC))

		result, err := uc.RecordDeposit(context.Background(), input(200_000))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.QuotaJustReached {
			t.Error("expected quota to be reached on this deposit")
		}
		if result.Commission != 2_000 {
			t.Errorf("expected commission 2000 at 1%%, got %d", result.Commission)
		}
		if len(outboxRepo.EventsOfType(domain.EventTypeQuotaReached)) != 1 {
			t.Error("expected one quota.reached event")
		}
	})

	t.Run("quota is flagged exactly once per day", func(t *testing.T) {
		result, err := uc.RecordDeposit(context.Background(), input(100_000))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.QuotaJustReached {
			t.Error("quota must only be flagged on the deposit that reaches it")
		}
		if result.Commission != 1_000 {
			t.Errorf("bonus rate must stick for the rest of the day, got %d", result.Commission)
		}
		if len(outboxRepo.EventsOfType(domain.EventTypeQuotaReached)) != 1 {
			t.Error("expected still exactly one quota.reached event")
		}
	})

	t.Run("agent commission accrues on the commission balance", func(t *testing.T) {
		agent, _ := accRepo.GetByID(context.Background(), "agent-1")
		if agent.CommissionBalance != 4_500 {
			t.Errorf("expected agent commission balance 4500, got %d", agent.CommissionBalance)
		}
		if agent.Balance != 0 {
			t.Errorf("deposit commission must not touch the primary balance, got %d", agent.Balance)
		}
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		_, err := uc.RecordDeposit(context.Background(), input(-1))
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("unknown client rejected", func(t *testing.T) {
		_, err := uc.RecordDeposit(context.Background(), usecase.RecordDepositInput{
			AgentID: "agent-1", ClientID: "ghost", Amount: 1_000,
		})
		if !errors.Is(err, domain.ErrAccountNotFound) {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}
	})
}

func TestDepositUseCase_RecordDeposit_AfterCutoff(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Seed(&domain.Account{ID: "agent-1", Role: domain.RoleAgent})
	accRepo.Seed(&domain.Account{ID: "client-1", Role: domain.RoleUser})

	quotaRepo := mocks.NewMockQuotaRepository()
	outboxRepo := mocks.NewMockOutboxRepository()
	clock := mocks.NewMockClock(time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC))

	uc := newDepositUseCase(accRepo, quotaRepo, outboxRepo, clock)

	result, err := uc.RecordDeposit(context.Background(), usecase.RecordDepositInput{
		AgentID: "agent-1", ClientID: "client-1", Amount: 600_000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.QuotaJustReached {
		t.Error("volume reached after the cutoff must not unlock the bonus")
	}
	if result.Commission != 3_000 {
		t.Errorf("expected base rate commission 3000, got %d", result.Commission)
	}
	if len(outboxRepo.EventsOfType(domain.EventTypeQuotaReached)) != 0 {
		t.Error("expected no quota.reached event after the cutoff")
	}
}

func TestDepositUseCase_RecordDeposit_NewDayResetsQuota(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Seed(&domain.Account{ID: "agent-1", Role: domain.RoleAgent})
	accRepo.Seed(&domain.Account{ID: "client-1", Role: domain.RoleUser})

	quotaRepo := mocks.NewMockQuotaRepository()
	clock := mocks.NewMockClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))

	uc := newDepositUseCase(accRepo, quotaRepo, mocks.NewMockOutboxRepository(), clock)

	input := usecase.RecordDepositInput{AgentID: "agent-1", ClientID: "client-1", Amount: 500_000}

	first, err := uc.RecordDeposit(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.QuotaJustReached {
		t.Error("expected quota reached on day one")
	}

	clock.Set(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))

	second, err := uc.RecordDeposit(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.QuotaJustReached {
		t.Error("a new day must start from a fresh quota")
	}
	if second.Commission != 5_000 {
		t.Errorf("expected bonus commission 5000, got %d", second.Commission)
	}
}

type countingRetrier struct {
	attempts int
}

func (r *countingRetrier) Retry(_ context.Context, operation func() error) error {
	var err error
	for i := 0; i < 3; i++ {
		r.attempts++
		if err = operation(); err == nil {
			return nil
		}
	}
	return err
}

func TestDepositUseCase_RecordDepositRetriesTransientFailures(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Seed(&domain.Account{ID: "agent-1", Role: domain.RoleAgent})
	accRepo.Seed(&domain.Account{ID: "client-1", Role: domain.RoleUser})

	quotaRepo := mocks.NewMockQuotaRepository()
	failures := 1
	quotaRepo.GetOrCreateForUpdateFunc = func(_ context.Context, _ usecase.Transaction, agentID, date string) (*domain.DailyAgentQuota, error) {
		if failures > 0 {
			failures--
			return nil, errors.New("deadlock detected")
		}
		return &domain.DailyAgentQuota{AgentID: agentID, Date: date}, nil
	}

	retrier := &countingRetrier{}
	uc := usecase.NewDepositUseCase(
		mocks.NewMockTransactionManager(),
		accRepo,
		quotaRepo,
		mocks.NewMockEntryRepository(),
		mocks.NewMockOutboxRepository(),
		mocks.NewMockAuditRepository(),
		mocks.NewMockIDGenerator(),
		mocks.NewMockClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)),
		time.UTC,
		retrier,
		nil,
	)

	result, err := uc.RecordDeposit(context.Background(), usecase.RecordDepositInput{
		AgentID:  "agent-1",
		ClientID: "client-1",
		Amount:   200_000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retrier.attempts != 2 {
		t.Errorf("expected the transaction to run twice, got %d attempts", retrier.attempts)
	}
	if result.Commission != 1_000 {
		t.Errorf("expected commission 1000, got %d", result.Commission)
	}
}
