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

const platformID = "platform-1"

func newTransferUseCase(accRepo *mocks.MockAccountRepository, transferRepo *mocks.MockTransferRepository, entryRepo *mocks.MockEntryRepository) *usecase.TransferUseCase {
	return usecase.NewTransferUseCase(
		mocks.NewMockTransactionManager(),
		accRepo,
		transferRepo,
		entryRepo,
		mocks.NewMockOutboxRepository(),
		mocks.NewMockIDGenerator(),
		mocks.NewMockClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)),
		nil,
		platformID,
		nil,
	)
}

func seedTransferAccounts(accRepo *mocks.MockAccountRepository, senderBalance int64, recipientTerritory domain.Territory) {
	accRepo.Seed(&domain.Account{ID: "sender-1", Role: domain.RoleUser, Territory: "CD", Balance: senderBalance})
	accRepo.Seed(&domain.Account{ID: "recipient-1", Role: domain.RoleUser, Territory: recipientTerritory})
	accRepo.Seed(&domain.Account{ID: "agent-1", Role: domain.RoleAgent, Territory: "CD"})
	accRepo.Seed(&domain.Account{ID: platformID, Role: domain.RoleAdmin, Territory: "CD"})
}

func TestTransferUseCase_CreateTransfer(t *testing.T) {
	t.Run("domestic transfer pays the base fee to the platform", func(t *testing.T) {
		accRepo := mocks.NewMockAccountRepository()
		seedTransferAccounts(accRepo, 200_000, "CD")

		uc := newTransferUseCase(accRepo, mocks.NewMockTransferRepository(), mocks.NewMockEntryRepository())

		transfer, err := uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
			FromAccountID: "sender-1",
			ToAccountID:   "recipient-1",
			Amount:        100_000,
			InitiatorRole: domain.RoleUser,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if transfer.Fee != 1_000 {
			t.Errorf("expected fee 1000, got %d", transfer.Fee)
		}
		if transfer.AgentCommission != 0 {
			t.Errorf("domestic transfers carry no agent cut, got %d", transfer.AgentCommission)
		}
		if transfer.PlatformCommission != 1_000 {
			t.Errorf("expected platform commission 1000, got %d", transfer.PlatformCommission)
		}

		sender, _ := accRepo.GetByID(context.Background(), "sender-1")
		if sender.Balance != 99_000 {
			t.Errorf("expected sender balance 99000, got %d", sender.Balance)
		}
		recipient, _ := accRepo.GetByID(context.Background(), "recipient-1")
		if recipient.Balance != 100_000 {
			t.Errorf("expected recipient balance 100000, got %d", recipient.Balance)
		}
		platform, _ := accRepo.GetByID(context.Background(), platformID)
		if platform.CommissionBalance != 1_000 {
			t.Errorf("expected platform commission balance 1000, got %d", platform.CommissionBalance)
		}
	})

	t.Run("agent-initiated international transfer splits the fee", func(t *testing.T) {
		accRepo := mocks.NewMockAccountRepository()
		seedTransferAccounts(accRepo, 600_000, "CG")

		uc := newTransferUseCase(accRepo, mocks.NewMockTransferRepository(), mocks.NewMockEntryRepository())

		transfer, err := uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
			FromAccountID: "sender-1",
			ToAccountID:   "recipient-1",
			Amount:        500_000,
			InitiatorRole: domain.RoleAgent,
			InitiatorID:   "agent-1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if transfer.Fee != 32_500 {
			t.Errorf("expected fee 32500 at 6.5%%, got %d", transfer.Fee)
		}
		if transfer.AgentCommission != 3_250 {
			t.Errorf("expected agent cut 3250, got %d", transfer.AgentCommission)
		}
		if transfer.PlatformCommission != 29_250 {
			t.Errorf("expected platform commission 29250, got %d", transfer.PlatformCommission)
		}

		agent, _ := accRepo.GetByID(context.Background(), "agent-1")
		if agent.CommissionBalance != 3_250 {
			t.Errorf("expected agent commission balance 3250, got %d", agent.CommissionBalance)
		}
	})

	t.Run("large international transfer uses the upper tier", func(t *testing.T) {
		accRepo := mocks.NewMockAccountRepository()
		seedTransferAccounts(accRepo, 2_000_000, "CG")

		uc := newTransferUseCase(accRepo, mocks.NewMockTransferRepository(), mocks.NewMockEntryRepository())

		transfer, err := uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
			FromAccountID: "sender-1",
			ToAccountID:   "recipient-1",
			Amount:        1_000_000,
			InitiatorRole: domain.RoleUser,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if transfer.Fee != 50_000 {
			t.Errorf("expected fee 50000 at 5%%, got %d", transfer.Fee)
		}
	})

	t.Run("sender must cover amount plus fee", func(t *testing.T) {
		accRepo := mocks.NewMockAccountRepository()
		seedTransferAccounts(accRepo, 100_000, "CD")

		uc := newTransferUseCase(accRepo, mocks.NewMockTransferRepository(), mocks.NewMockEntryRepository())

		_, err := uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
			FromAccountID: "sender-1",
			ToAccountID:   "recipient-1",
			Amount:        100_000,
			InitiatorRole: domain.RoleUser,
		})
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			t.Errorf("expected ErrInsufficientFunds, got %v", err)
		}

		sender, _ := accRepo.GetByID(context.Background(), "sender-1")
		if sender.Balance != 100_000 {
			t.Errorf("failed transfer must not move funds, got %d", sender.Balance)
		}
	})

	t.Run("same account refused", func(t *testing.T) {
		uc := newTransferUseCase(mocks.NewMockAccountRepository(), mocks.NewMockTransferRepository(), mocks.NewMockEntryRepository())

		_, err := uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
			FromAccountID: "sender-1",
			ToAccountID:   "sender-1",
			Amount:        1_000,
		})
		if !errors.Is(err, domain.ErrSameAccount) {
			t.Errorf("expected ErrSameAccount, got %v", err)
		}
	})

	t.Run("unknown recipient refused", func(t *testing.T) {
		accRepo := mocks.NewMockAccountRepository()
		accRepo.Seed(&domain.Account{ID: "sender-1", Role: domain.RoleUser, Territory: "CD", Balance: 10_000})
		accRepo.Seed(&domain.Account{ID: platformID, Role: domain.RoleAdmin, Territory: "CD"})

		uc := newTransferUseCase(accRepo, mocks.NewMockTransferRepository(), mocks.NewMockEntryRepository())

		_, err := uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
			FromAccountID: "sender-1",
			ToAccountID:   "ghost",
			Amount:        1_000,
			InitiatorRole: domain.RoleUser,
		})
		if !errors.Is(err, domain.ErrAccountNotFound) {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}
	})
}

func TestTransferUseCase_GetTransfer(t *testing.T) {
	transferRepo := mocks.NewMockTransferRepository()
	transferRepo.Create(context.Background(), nil, &domain.Transfer{
		ID:            "tr-1",
		FromAccountID: "sender-1",
		ToAccountID:   "recipient-1",
		Amount:        1_000,
	})

	uc := newTransferUseCase(mocks.NewMockAccountRepository(), transferRepo, mocks.NewMockEntryRepository())

	transfer, err := uc.GetTransfer(context.Background(), "tr-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transfer.ID != "tr-1" {
		t.Errorf("expected tr-1, got %s", transfer.ID)
	}

	if _, err := uc.GetTransfer(context.Background(), "ghost"); !errors.Is(err, domain.ErrTransferNotFound) {
		t.Errorf("expected ErrTransferNotFound, got %v", err)
	}
}
