package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/infrastructure/metrics"
)

// DepositUseCase records agent-assisted deposits: it credits the client,
// accrues the agent's commission and tracks the daily quota that decides the
// commission tier. The quota row lock makes concurrent same-day deposits by
// one agent serialize, so only one of them can claim "quota just reached".
type DepositUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	quotaRepo   QuotaRepository
	entryRepo   EntryRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	clock       Clock
	location    *time.Location
	retrier     Retrier
	metrics     *metrics.Metrics
}

// NewDepositUseCase creates a new DepositUseCase. location is the local
// timezone against which the quota cutoff hour is evaluated.
func NewDepositUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	quotaRepo QuotaRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	clock Clock,
	location *time.Location,
	retrier Retrier,
	metrics *metrics.Metrics,
) *DepositUseCase {
	if location == nil {
		location = time.UTC
	}

	return &DepositUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		quotaRepo:   quotaRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		clock:       clock,
		location:    location,
		retrier:     retrier,
		metrics:     metrics,
	}
}

// RecordDepositInput represents input for recording an agent deposit.
type RecordDepositInput struct {
	AgentID  string
	ClientID string
	Amount   int64
}

// DepositResult reports the commission applied and whether this deposit was
// the one that unlocked the day's bonus tier.
type DepositResult struct {
	DepositID        string
	CommissionRate   decimal.Decimal
	Commission       int64
	QuotaJustReached bool
	ClientBalance    int64
	AgentCommission  int64
}

// RecordDeposit performs the deposit as one atomic unit: quota accrual,
// client credit and agent commission credit. The quota and account row locks
// can collide with concurrent settlements, so the transaction is retried on
// serialization failures.
func (uc *DepositUseCase) RecordDeposit(ctx context.Context, input RecordDepositInput) (*DepositResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var result *DepositResult

	run := func() error {
		var err error
		result, err = uc.recordOnce(ctx, input)
		return err
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, run)
	} else {
		err = run()
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.DepositsRecorded.Inc()
		uc.metrics.DepositVolume.Observe(float64(input.Amount))
		uc.metrics.CommissionsCredited.WithLabelValues("deposit").Inc()
		if result.QuotaJustReached {
			uc.metrics.QuotaBonusesUnlocked.Inc()
		}
	}

	return result, nil
}

func (uc *DepositUseCase) recordOnce(ctx context.Context, input RecordDepositInput) (*DepositResult, error) {
	now := uc.clock.Now().In(uc.location)
	date := now.Format(domain.QuotaDateLayout)

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Quota row first: it serializes all of this agent's deposits today.
	quota, err := uc.quotaRepo.GetOrCreateForUpdate(txCtx, tx, input.AgentID, date)
	if err != nil {
		return nil, err
	}

	justReached := quota.Accumulate(input.Amount, now)
	quota.UpdatedAt = now.UTC()

	rate := domain.DepositCommissionRate(quota.QuotaReachedBeforeCutoff)

	commission, err := domain.DepositCommission(input.Amount, quota.QuotaReachedBeforeCutoff)
	if err != nil {
		return nil, err
	}

	ids := []string{input.AgentID, input.ClientID}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(txCtx, tx, ids)
	if err != nil {
		return nil, err
	}

	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountMap[a.ID] = a
	}

	agent := accountMap[input.AgentID]
	client := accountMap[input.ClientID]
	if agent == nil || client == nil {
		return nil, domain.ErrAccountNotFound
	}

	depositID := uc.idGen.Generate()
	nowUTC := now.UTC()

	if err := uc.applyAdjustment(txCtx, tx, client, domain.BalancePrimary, input.Amount, depositID, nowUTC); err != nil {
		return nil, err
	}

	if commission > 0 {
		if err := uc.applyAdjustment(txCtx, tx, agent, domain.BalanceCommission, commission, depositID, nowUTC); err != nil {
			return nil, err
		}
	}

	if err := uc.quotaRepo.Update(txCtx, tx, quota); err != nil {
		return nil, err
	}

	recordedEvent := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   depositID,
		AggregateType: domain.AggregateTypeDeposit,
		EventType:     domain.EventTypeDepositRecorded,
		Payload: domain.DepositRecordedEvent{
			AgentID:        input.AgentID,
			ClientID:       input.ClientID,
			Amount:         input.Amount,
			Commission:     commission,
			CommissionRate: rate.String(),
		}.Payload(),
		CreatedAt: nowUTC,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, recordedEvent); err != nil {
		return nil, err
	}

	if justReached {
		quotaEvent := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   input.AgentID,
			AggregateType: domain.AggregateTypeQuota,
			EventType:     domain.EventTypeQuotaReached,
			Payload: domain.QuotaReachedEvent{
				AgentID: input.AgentID,
				Date:    date,
				Volume:  quota.AccumulatedVolume,
			}.Payload(),
			CreatedAt: nowUTC,
			Published: false,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, quotaEvent); err != nil {
			return nil, err
		}
	}

	if uc.auditRepo != nil {
		actorID := input.AgentID
		if actor, ok := domain.ActorFromContext(ctx); ok {
			actorID = actor.ID
		}

		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			ActorID:      actorID,
			Action:       string(domain.AuditActionDepositRecord),
			ResourceType: "deposit",
			ResourceID:   depositID,
			AfterState: domain.MarshalState(map[string]any{
				"amount":     input.Amount,
				"commission": commission,
				"client_id":  input.ClientID,
			}),
			Status:    string(domain.AuditStatusSuccess),
			CreatedAt: nowUTC,
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, log); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &DepositResult{
		DepositID:        depositID,
		CommissionRate:   rate,
		Commission:       commission,
		QuotaJustReached: justReached,
		ClientBalance:    client.Balance,
		AgentCommission:  agent.CommissionBalance,
	}, nil
}

func (uc *DepositUseCase) applyAdjustment(ctx context.Context, tx Transaction, account *domain.Account, kind domain.BalanceKind, delta int64, depositID string, now time.Time) error {
	previous := account.BalanceOf(kind)
	current := account.ApplyAdjust(kind, delta)

	entry := &domain.Entry{
		ID:              uc.idGen.Generate(),
		AccountID:       account.ID,
		BalanceKind:     kind,
		ReferenceType:   domain.ReferenceDeposit,
		ReferenceID:     depositID,
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
