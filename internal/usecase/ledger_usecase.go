package usecase

import (
	"context"

	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/infrastructure/metrics"
)

// LedgerUseCase is the only entry point allowed to mutate a balance outside
// of a settlement, deposit or transfer. The row lock taken inside the
// transaction serializes concurrent adjustments on one account; a negative
// balance is never observable, not even transiently.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	clock       Clock
	retrier     Retrier
	metrics     *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	metrics *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		clock:       clock,
		retrier:     retrier,
		metrics:     metrics,
	}
}

// AdjustInput represents one balance adjustment. Delta may be negative
// (debit) or positive (credit).
type AdjustInput struct {
	AccountID     string
	Delta         int64
	Kind          domain.BalanceKind
	ReferenceType string
	ReferenceID   string
}

// Adjust applies delta to the account's balance and returns the new value.
// The insufficient-funds check and the mutation happen under the same row
// lock; the new balance is durably committed before Adjust returns.
func (uc *LedgerUseCase) Adjust(ctx context.Context, input AdjustInput) (int64, error) {
	if input.Delta == 0 {
		return 0, domain.ErrInvalidAmount
	}

	if input.Kind == "" {
		input.Kind = domain.BalancePrimary
	}

	if input.ReferenceType == "" {
		input.ReferenceType = domain.ReferenceAdjustment
	}

	var newBalance int64

	run := func() error {
		var err error
		newBalance, err = uc.adjustOnce(ctx, input)
		return err
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, run)
	} else {
		err = run()
	}
	if err != nil {
		return 0, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues("adjust").Inc()
	}

	return newBalance, nil
}

func (uc *LedgerUseCase) adjustOnce(ctx context.Context, input AdjustInput) (int64, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.AccountID)
	if err != nil {
		return 0, err
	}

	if err := account.ValidateAdjust(input.Kind, input.Delta); err != nil {
		return 0, err
	}

	now := uc.clock.Now().UTC()
	previous := account.BalanceOf(input.Kind)
	current := account.ApplyAdjust(input.Kind, input.Delta)

	entry := &domain.Entry{
		ID:              uc.idGen.Generate(),
		AccountID:       account.ID,
		BalanceKind:     input.Kind,
		ReferenceType:   input.ReferenceType,
		ReferenceID:     input.ReferenceID,
		Amount:          input.Delta,
		PreviousBalance: previous,
		CurrentBalance:  current,
		AccountVersion:  account.Version + 1,
		CreatedAt:       now,
	}
	if err := uc.entryRepo.Create(txCtx, tx, entry); err != nil {
		return 0, err
	}

	account.SetBalance(input.Kind, current)
	account.Version++

	if err := uc.accountRepo.UpdateBalances(txCtx, tx, account, now); err != nil {
		return 0, err
	}

	if uc.auditRepo != nil {
		actorID := "system"
		if actor, ok := domain.ActorFromContext(ctx); ok {
			actorID = actor.ID
		}

		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      actorID,
			Action:       string(domain.AuditActionBalanceAdjust),
			ResourceType: "account",
			ResourceID:   account.ID,
			AfterState: domain.MarshalState(map[string]any{
				"kind":    string(input.Kind),
				"delta":   input.Delta,
				"balance": current,
			}),
			Status:    string(domain.AuditStatusSuccess),
			CreatedAt: now,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, log); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return 0, err
	}

	return current, nil
}

// GetBalance returns the account's balances.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, accountID string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, accountID)
}

// SweepCommission moves an agent's accrued commission balance into their
// primary balance, making it spendable.
func (uc *LedgerUseCase) SweepCommission(ctx context.Context, agentID string) (int64, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, agentID)
	if err != nil {
		return 0, err
	}

	amount := account.CommissionBalance
	if amount <= 0 {
		return 0, domain.ErrInsufficientFunds
	}

	now := uc.clock.Now().UTC()
	sweepID := uc.idGen.Generate()

	debit := &domain.Entry{
		ID:              uc.idGen.Generate(),
		AccountID:       account.ID,
		BalanceKind:     domain.BalanceCommission,
		ReferenceType:   domain.ReferenceSweep,
		ReferenceID:     sweepID,
		Amount:          -amount,
		PreviousBalance: account.CommissionBalance,
		CurrentBalance:  0,
		AccountVersion:  account.Version + 1,
		CreatedAt:       now,
	}
	if err := uc.entryRepo.Create(txCtx, tx, debit); err != nil {
		return 0, err
	}

	credit := &domain.Entry{
		ID:              uc.idGen.Generate(),
		AccountID:       account.ID,
		BalanceKind:     domain.BalancePrimary,
		ReferenceType:   domain.ReferenceSweep,
		ReferenceID:     sweepID,
		Amount:          amount,
		PreviousBalance: account.Balance,
		CurrentBalance:  account.Balance + amount,
		AccountVersion:  account.Version + 2,
		CreatedAt:       now,
	}
	if err := uc.entryRepo.Create(txCtx, tx, credit); err != nil {
		return 0, err
	}

	account.Balance += amount
	account.CommissionBalance = 0
	account.Version += 2

	if err := uc.accountRepo.UpdateBalances(txCtx, tx, account, now); err != nil {
		return 0, err
	}

	if uc.auditRepo != nil {
		actorID := agentID
		if actor, ok := domain.ActorFromContext(ctx); ok {
			actorID = actor.ID
		}

		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      actorID,
			Action:       string(domain.AuditActionSweep),
			ResourceType: "account",
			ResourceID:   account.ID,
			AfterState: domain.MarshalState(map[string]any{
				"amount":  amount,
				"balance": account.Balance,
			}),
			Status:    string(domain.AuditStatusSuccess),
			CreatedAt: now,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, log); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return 0, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues("commission_sweep").Inc()
	}

	return amount, nil
}

// ListEntries lists ledger entries for an account.
func (uc *LedgerUseCase) ListEntries(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return uc.entryRepo.GetByAccount(ctx, accountID, limit, offset)
}
