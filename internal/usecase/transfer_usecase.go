package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/infrastructure/metrics"
)

// TransferUseCase handles peer transfers. The sender pays amount plus fee;
// the platform account accrues the platform commission and, for
// agent-initiated international transfers, the initiating agent accrues
// their cut.
type TransferUseCase struct {
	txManager         TransactionManager
	accountRepo       AccountRepository
	transferRepo      TransferRepository
	entryRepo         EntryRepository
	outboxRepo        OutboxRepository
	idGen             IDGenerator
	clock             Clock
	retrier           Retrier
	platformAccountID string
	metrics           *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	platformAccountID string,
	metrics *metrics.Metrics,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:         txManager,
		accountRepo:       accountRepo,
		transferRepo:      transferRepo,
		entryRepo:         entryRepo,
		outboxRepo:        outboxRepo,
		idGen:             idGen,
		clock:             clock,
		retrier:           retrier,
		platformAccountID: platformAccountID,
		metrics:           metrics,
	}
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        int64
	InitiatorRole domain.ActorRole
	// InitiatorID is the agent who keyed in the transfer when
	// InitiatorRole is agent; their commission accrues there.
	InitiatorID string
	Metadata    map[string]any
}

// CreateTransfer moves amount from sender to recipient, collects the fee
// and splits the commissions, all in one transaction.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*domain.Transfer, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var transfer *domain.Transfer

	run := func() error {
		var err error
		transfer, err = uc.createOnce(ctx, input)
		return err
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, run)
	} else {
		err = run()
	}
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.TransferErrors.WithLabelValues(errorType(err)).Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.Inc()
	}

	return transfer, nil
}

func (uc *TransferUseCase) createOnce(ctx context.Context, input CreateTransferInput) (*domain.Transfer, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Lock all involved accounts in sorted order.
	ids := uc.collectAccountIDs(input)
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(txCtx, tx, ids)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(ids) {
		return nil, domain.ErrAccountNotFound
	}

	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountMap[a.ID] = a
	}

	from := accountMap[input.FromAccountID]
	to := accountMap[input.ToAccountID]

	role := input.InitiatorRole
	if role.EarnsAgentCut() && input.InitiatorID == "" {
		// No agent account to credit, so the whole fee stays with the platform.
		role = domain.RoleUser
	}

	quote, err := domain.QuoteTransferFee(input.Amount, from.Territory, to.Territory, role)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	transfer := &domain.Transfer{
		ID:                 uc.idGen.Generate(),
		FromAccountID:      input.FromAccountID,
		ToAccountID:        input.ToAccountID,
		Amount:             input.Amount,
		Fee:                quote.Fee,
		AgentCommission:    quote.AgentCommission,
		PlatformCommission: quote.PlatformCommission,
		InitiatorRole:      input.InitiatorRole,
		Metadata:           input.Metadata,
		CreatedAt:          now,
	}

	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	if err := from.ValidateAdjust(domain.BalancePrimary, -transfer.TotalDebit()); err != nil {
		return nil, err
	}

	if err := uc.transferRepo.Create(txCtx, tx, transfer); err != nil {
		return nil, err
	}

	if err := uc.applyAdjustment(txCtx, tx, from, domain.BalancePrimary, -transfer.TotalDebit(), transfer.ID, now); err != nil {
		return nil, err
	}

	if err := uc.applyAdjustment(txCtx, tx, to, domain.BalancePrimary, transfer.Amount, transfer.ID, now); err != nil {
		return nil, err
	}

	if transfer.PlatformCommission > 0 {
		platform := accountMap[uc.platformAccountID]
		if platform == nil {
			return nil, domain.ErrAccountNotFound
		}
		if err := uc.applyAdjustment(txCtx, tx, platform, domain.BalanceCommission, transfer.PlatformCommission, transfer.ID, now); err != nil {
			return nil, err
		}
	}

	if transfer.AgentCommission > 0 && input.InitiatorID != "" {
		agent := accountMap[input.InitiatorID]
		if agent == nil {
			return nil, domain.ErrAccountNotFound
		}
		if err := uc.applyAdjustment(txCtx, tx, agent, domain.BalanceCommission, transfer.AgentCommission, transfer.ID, now); err != nil {
			return nil, err
		}
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   transfer.ID,
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     domain.EventTypeTransferCreated,
		Payload: map[string]any{
			"transfer_id":     transfer.ID,
			"from_account_id": transfer.FromAccountID,
			"to_account_id":   transfer.ToAccountID,
			"amount":          transfer.Amount,
			"fee":             transfer.Fee,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return transfer, nil
}

// GetTransfer retrieves a transfer by ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// ListTransfersByAccountInput represents input for listing transfers.
type ListTransfersByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListTransfersByAccount lists transfers for an account.
func (uc *TransferUseCase) ListTransfersByAccount(ctx context.Context, input ListTransfersByAccountInput) ([]*domain.Transfer, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.transferRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

func (uc *TransferUseCase) collectAccountIDs(input CreateTransferInput) []string {
	seen := map[string]bool{
		input.FromAccountID: true,
	}
	ids := []string{input.FromAccountID}

	for _, id := range []string{input.ToAccountID, uc.platformAccountID, input.InitiatorID} {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	return ids
}

func (uc *TransferUseCase) applyAdjustment(ctx context.Context, tx Transaction, account *domain.Account, kind domain.BalanceKind, delta int64, transferID string, now time.Time) error {
	previous := account.BalanceOf(kind)
	current := account.ApplyAdjust(kind, delta)

	entry := &domain.Entry{
		ID:              uc.idGen.Generate(),
		AccountID:       account.ID,
		BalanceKind:     kind,
		ReferenceType:   domain.ReferenceTransfer,
		ReferenceID:     transferID,
		Amount:          delta,
		PreviousBalance: previous,
		CurrentBalance:  current,
		AccountVersion:  account.Version + 1,
		CreatedAt:       now,
	}

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return err
	}

	account.SetBalance(kind, current)
	account.Version++

	return uc.accountRepo.UpdateBalances(ctx, tx, account, now)
}

func errorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case IsValidationError(err):
		return "validation"
	default:
		return "internal"
	}
}
