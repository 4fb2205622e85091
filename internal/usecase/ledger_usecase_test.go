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

func newLedgerUseCase(accRepo *mocks.MockAccountRepository, entryRepo *mocks.MockEntryRepository) *usecase.LedgerUseCase {
	return usecase.NewLedgerUseCase(
		mocks.NewMockTransactionManager(),
		accRepo,
		entryRepo,
		mocks.NewMockAuditRepository(),
		mocks.NewMockIDGenerator(),
		mocks.NewMockClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)),
		nil,
		nil,
	)
}

func TestLedgerUseCase_Adjust(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.AdjustInput
		balance     int64
		wantBalance int64
		expectError bool
		errorType   error
	}{
		{
			name:        "credit increases the balance",
			input:       usecase.AdjustInput{AccountID: "acc-1", Delta: 5_000},
			balance:     1_000,
			wantBalance: 6_000,
		},
		{
			name:        "debit decreases the balance",
			input:       usecase.AdjustInput{AccountID: "acc-1", Delta: -400},
			balance:     1_000,
			wantBalance: 600,
		},
		{
			name:        "debit to exactly zero is allowed",
			input:       usecase.AdjustInput{AccountID: "acc-1", Delta: -1_000},
			balance:     1_000,
			wantBalance: 0,
		},
		{
			name:        "overdraft refused",
			input:       usecase.AdjustInput{AccountID: "acc-1", Delta: -1_001},
			balance:     1_000,
			expectError: true,
			errorType:   domain.ErrInsufficientFunds,
		},
		{
			name:        "zero delta refused",
			input:       usecase.AdjustInput{AccountID: "acc-1", Delta: 0},
			balance:     1_000,
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name:        "unknown account",
			input:       usecase.AdjustInput{AccountID: "ghost", Delta: 100},
			balance:     1_000,
			expectError: true,
			errorType:   domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accRepo := mocks.NewMockAccountRepository()
			accRepo.Seed(&domain.Account{ID: "acc-1", Role: domain.RoleUser, Balance: tt.balance})

			uc := newLedgerUseCase(accRepo, mocks.NewMockEntryRepository())

			newBalance, err := uc.Adjust(context.Background(), tt.input)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errorType != nil && !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}

				account, _ := accRepo.GetByID(context.Background(), "acc-1")
				if account.Balance != tt.balance {
					t.Errorf("failed adjust must not move the balance, got %d", account.Balance)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if newBalance != tt.wantBalance {
				t.Errorf("expected balance %d, got %d", tt.wantBalance, newBalance)
			}
		})
	}
}

func TestLedgerUseCase_Adjust_EntryChain(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Seed(&domain.Account{ID: "acc-1", Role: domain.RoleUser, Balance: 0})

	entryRepo := mocks.NewMockEntryRepository()
	uc := newLedgerUseCase(accRepo, entryRepo)

	deltas := []int64{500, -200, 1_000, -300}
	for _, d := range deltas {
		if _, err := uc.Adjust(context.Background(), usecase.AdjustInput{AccountID: "acc-1", Delta: d}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries := entryRepo.All()
	if len(entries) != len(deltas) {
		t.Fatalf("expected %d entries, got %d", len(deltas), len(entries))
	}

	var running int64
	for i, e := range entries {
		if e.PreviousBalance != running {
			t.Errorf("entry %d: expected previous %d, got %d", i, running, e.PreviousBalance)
		}
		running += e.Amount
		if e.CurrentBalance != running {
			t.Errorf("entry %d: expected current %d, got %d", i, running, e.CurrentBalance)
		}
		if e.AccountVersion != int64(i+1) {
			t.Errorf("entry %d: expected version %d, got %d", i, i+1, e.AccountVersion)
		}
	}

	account, _ := accRepo.GetByID(context.Background(), "acc-1")
	if account.Balance != running {
		t.Errorf("expected final balance %d, got %d", running, account.Balance)
	}
}

func TestLedgerUseCase_SweepCommission(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Seed(&domain.Account{
		ID:                "agent-1",
		Role:              domain.RoleAgent,
		Balance:           2_000,
		CommissionBalance: 4_500,
	})

	entryRepo := mocks.NewMockEntryRepository()
	uc := newLedgerUseCase(accRepo, entryRepo)

	swept, err := uc.SweepCommission(context.Background(), "agent-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swept != 4_500 {
		t.Errorf("expected swept amount 4500, got %d", swept)
	}

	agent, _ := accRepo.GetByID(context.Background(), "agent-1")
	if agent.Balance != 6_500 {
		t.Errorf("expected primary balance 6500, got %d", agent.Balance)
	}
	if agent.CommissionBalance != 0 {
		t.Errorf("expected commission balance 0, got %d", agent.CommissionBalance)
	}
	if len(entryRepo.All()) != 2 {
		t.Errorf("expected a debit and a credit entry, got %d", len(entryRepo.All()))
	}

	t.Run("empty commission balance refused", func(t *testing.T) {
		_, err := uc.SweepCommission(context.Background(), "agent-1")
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Errorf("expected ErrInsufficientFunds, got %v", err)
		}
	})
}

func TestLedgerUseCase_GetBalance(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Seed(&domain.Account{ID: "acc-1", Balance: 1_234})

	uc := newLedgerUseCase(accRepo, mocks.NewMockEntryRepository())

	account, err := uc.GetBalance(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Balance != 1_234 {
		t.Errorf("expected balance 1234, got %d", account.Balance)
	}

	if _, err := uc.GetBalance(context.Background(), "ghost"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
