package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/infrastructure/metrics"
)

// WithdrawalUseCase owns the withdrawal request life cycle: creation, the
// verification-code handshake, settlement and rejection. Every confirmation
// runs inside a single database transaction, so the client debit, the agent
// commission credit and the state transition commit or roll back together.
type WithdrawalUseCase struct {
	txManager      TransactionManager
	accountRepo    AccountRepository
	withdrawalRepo WithdrawalRepository
	entryRepo      EntryRepository
	outboxRepo     OutboxRepository
	auditRepo      AuditRepository
	idGen          IDGenerator
	codeGen        CodeGenerator
	clock          Clock
	retrier        Retrier
	metrics        *metrics.Metrics
}

// NewWithdrawalUseCase creates a new WithdrawalUseCase.
func NewWithdrawalUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	withdrawalRepo WithdrawalRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	codeGen CodeGenerator,
	clock Clock,
	retrier Retrier,
	metrics *metrics.Metrics,
) *WithdrawalUseCase {
	return &WithdrawalUseCase{
		txManager:      txManager,
		accountRepo:    accountRepo,
		withdrawalRepo: withdrawalRepo,
		entryRepo:      entryRepo,
		outboxRepo:     outboxRepo,
		auditRepo:      auditRepo,
		idGen:          idGen,
		codeGen:        codeGen,
		clock:          clock,
		retrier:        retrier,
		metrics:        metrics,
	}
}

// CreateWithdrawalInput represents input for creating a withdrawal request.
type CreateWithdrawalInput struct {
	ClientID         string
	Amount           int64
	DestinationPhone string
	InitiatorRole    domain.ActorRole
	InitiatorID      string
	// AgentID names the paying agent when a client initiates the request
	// at an agent's counter. Ignored when the initiator is the agent.
	AgentID *string
}

// CreateWithdrawal creates a withdrawal request and issues its verification
// code. The balance check here is a fast-fail filter only; settlement
// re-checks atomically.
func (uc *WithdrawalUseCase) CreateWithdrawal(ctx context.Context, input CreateWithdrawalInput) (*domain.WithdrawalRequest, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidatePhone(input.DestinationPhone); err != nil {
		return nil, err
	}

	client, err := uc.accountRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	if err := client.ValidateAdjust(domain.BalancePrimary, -input.Amount); err != nil {
		return nil, err
	}

	code, err := uc.codeGen.Generate()
	if err != nil {
		return nil, err
	}

	status := domain.WithdrawalPending

	var agentID *string
	switch {
	case input.InitiatorRole == domain.RoleAgent:
		status = domain.WithdrawalAgentPending
		id := input.InitiatorID
		agentID = &id
	case input.AgentID != nil && *input.AgentID != "":
		status = domain.WithdrawalAgentPending
		agentID = input.AgentID
	}

	now := uc.clock.Now().UTC()
	request := &domain.WithdrawalRequest{
		ID:                uc.idGen.Generate(),
		ClientID:          input.ClientID,
		RequestingAgentID: agentID,
		InitiatorID:       input.InitiatorID,
		Amount:            input.Amount,
		DestinationPhone:  input.DestinationPhone,
		VerificationCode:  code,
		Status:            status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := request.Validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.withdrawalRepo.Create(txCtx, tx, request); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   request.ID,
		AggregateType: domain.AggregateTypeWithdrawal,
		EventType:     domain.EventTypeWithdrawalCreated,
		Payload: map[string]any{
			"request_id": request.ID,
			"client_id":  request.ClientID,
			"amount":     request.Amount,
			"status":     string(request.Status),
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		if err := uc.auditRepo.CreateTx(txCtx, tx, uc.auditLog(ctx, domain.AuditActionWithdrawalCreate, request.ID, nil, domain.MarshalState(request))); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.WithdrawalsCreated.Inc()
		uc.metrics.WithdrawalAmount.Observe(float64(request.Amount))
	}

	return request, nil
}

// ConfirmWithdrawal settles a withdrawal request. Retried confirmation of an
// already-completed request with the matching code replays the stored result
// without touching any balance.
func (uc *WithdrawalUseCase) ConfirmWithdrawal(ctx context.Context, requestID, suppliedCode, confirmingPartyID string) (*domain.SettlementResult, error) {
	start := time.Now()

	var (
		result     *domain.SettlementResult
		settledNow bool
	)

	run := func() error {
		var err error
		result, settledNow, err = uc.confirmOnce(ctx, requestID, suppliedCode, confirmingPartyID)
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

	// Replays of an already-completed request are not new settlements.
	if uc.metrics != nil && settledNow {
		uc.metrics.WithdrawalsSettled.Inc()
		uc.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	}

	return result, nil
}

func (uc *WithdrawalUseCase) confirmOnce(ctx context.Context, requestID, suppliedCode, confirmingPartyID string) (*domain.SettlementResult, bool, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// The request row lock serializes concurrent confirmations.
	request, err := uc.withdrawalRepo.GetByIDForUpdate(txCtx, tx, requestID)
	if err != nil {
		return nil, false, err
	}

	if request.Status.Terminal() {
		if request.Status == domain.WithdrawalCompleted && request.CodeMatches(suppliedCode) {
			// Idempotent replay: the code was consumed by this very
			// settlement, so the caller gets the original outcome.
			return request.Result(), false, nil
		}

		if request.Status == domain.WithdrawalCompleted {
			return nil, false, domain.ErrInvalidVerificationCode
		}

		return nil, false, domain.ErrInvalidStateTransition
	}

	if err := request.AuthorizeConfirmer(confirmingPartyID); err != nil {
		return nil, false, err
	}

	now := uc.clock.Now().UTC()

	if !request.CodeMatches(suppliedCode) {
		if err := uc.rejectLocked(txCtx, tx, request, domain.RejectReasonCodeMismatch, now); err != nil {
			return nil, false, err
		}
		if err := tx.Commit(txCtx); err != nil {
			return nil, false, err
		}
		uc.countRejection(domain.RejectReasonCodeMismatch)
		return nil, false, domain.ErrInvalidVerificationCode
	}

	accounts, err := uc.lockAccounts(txCtx, tx, request)
	if err != nil {
		return nil, false, err
	}

	client := accounts[request.ClientID]
	if client == nil {
		return nil, false, domain.ErrAccountNotFound
	}

	// Balances may have moved since creation; this is the authoritative check.
	if err := client.ValidateAdjust(domain.BalancePrimary, -request.Amount); err != nil {
		if err := uc.rejectLocked(txCtx, tx, request, domain.RejectReasonInsufficientFunds, now); err != nil {
			return nil, false, err
		}
		if err := tx.Commit(txCtx); err != nil {
			return nil, false, err
		}
		uc.countRejection(domain.RejectReasonInsufficientFunds)
		return nil, false, domain.ErrInsufficientFunds
	}

	var agent *domain.Account
	if request.RequestingAgentID != nil {
		agent = accounts[*request.RequestingAgentID]
		if agent == nil {
			return nil, false, domain.ErrAccountNotFound
		}
	}

	var commission int64
	if agent != nil {
		commission, err = domain.WithdrawalCommission(request.Amount)
		if err != nil {
			return nil, false, err
		}
	}

	if err := uc.applyAdjustment(txCtx, tx, client, domain.BalancePrimary, -request.Amount, domain.ReferenceWithdrawal, request.ID, now); err != nil {
		return nil, false, err
	}

	if agent != nil && commission > 0 {
		if err := uc.applyAdjustment(txCtx, tx, agent, domain.BalanceCommission, commission, domain.ReferenceWithdrawal, request.ID, now); err != nil {
			return nil, false, err
		}
	}

	request.Status = domain.WithdrawalCompleted
	request.AgentCommission = commission
	request.ClientBalanceAfter = client.Balance
	request.SettledAt = &now
	request.UpdatedAt = now

	if err := uc.withdrawalRepo.Update(txCtx, tx, request); err != nil {
		return nil, false, err
	}

	payload := domain.WithdrawalSettledEvent{
		RequestID:       request.ID,
		ClientID:        request.ClientID,
		Amount:          request.Amount,
		AgentCommission: commission,
		SettledAt:       now.Format(time.RFC3339),
	}
	if request.RequestingAgentID != nil {
		payload.AgentID = *request.RequestingAgentID
	}

	settledEvent := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   request.ID,
		AggregateType: domain.AggregateTypeWithdrawal,
		EventType:     domain.EventTypeWithdrawalSettled,
		Payload:       payload.Payload(),
		CreatedAt:     now,
		Published:     false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, settledEvent); err != nil {
		return nil, false, err
	}

	if uc.auditRepo != nil {
		log := uc.auditLog(ctx, domain.AuditActionWithdrawalConfirm, request.ID, nil, domain.MarshalState(request))
		log.ActorID = confirmingPartyID
		if err := uc.auditRepo.CreateTx(txCtx, tx, log); err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, false, err
	}

	if uc.metrics != nil && commission > 0 {
		uc.metrics.CommissionsCredited.WithLabelValues("withdrawal").Inc()
	}

	return request.Result(), true, nil
}

// RejectWithdrawal cancels a non-terminal request.
func (uc *WithdrawalUseCase) RejectWithdrawal(ctx context.Context, requestID, confirmingPartyID string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	request, err := uc.withdrawalRepo.GetByIDForUpdate(txCtx, tx, requestID)
	if err != nil {
		return err
	}

	if err := request.CanTransition(); err != nil {
		return err
	}

	if err := request.AuthorizeRejecter(confirmingPartyID); err != nil {
		return err
	}

	now := uc.clock.Now().UTC()
	if err := uc.rejectLocked(txCtx, tx, request, domain.RejectReasonCancelled, now); err != nil {
		return err
	}

	if uc.auditRepo != nil {
		log := uc.auditLog(ctx, domain.AuditActionWithdrawalReject, request.ID, nil, domain.MarshalState(request))
		log.ActorID = confirmingPartyID
		if err := uc.auditRepo.CreateTx(txCtx, tx, log); err != nil {
			return err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	uc.countRejection(domain.RejectReasonCancelled)

	return nil
}

// GetWithdrawal retrieves a withdrawal request by ID.
func (uc *WithdrawalUseCase) GetWithdrawal(ctx context.Context, id string) (*domain.WithdrawalRequest, error) {
	return uc.withdrawalRepo.GetByID(ctx, id)
}

// ListWithdrawalsByClientInput represents input for listing requests.
type ListWithdrawalsByClientInput struct {
	ClientID string
	Limit    int
	Offset   int
}

// ListWithdrawalsByClient lists a client's withdrawal requests.
func (uc *WithdrawalUseCase) ListWithdrawalsByClient(ctx context.Context, input ListWithdrawalsByClientInput) ([]*domain.WithdrawalRequest, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.withdrawalRepo.ListByClient(ctx, input.ClientID, input.Limit, input.Offset)
}

// rejectLocked marks an already-locked request rejected and emits the event.
func (uc *WithdrawalUseCase) rejectLocked(ctx context.Context, tx Transaction, request *domain.WithdrawalRequest, reason string, now time.Time) error {
	request.Status = domain.WithdrawalRejected
	request.RejectReason = &reason
	request.UpdatedAt = now

	if err := uc.withdrawalRepo.Update(ctx, tx, request); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   request.ID,
		AggregateType: domain.AggregateTypeWithdrawal,
		EventType:     domain.EventTypeWithdrawalRejected,
		Payload: map[string]any{
			"request_id": request.ID,
			"client_id":  request.ClientID,
			"reason":     reason,
		},
		CreatedAt: now,
		Published: false,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

// lockAccounts locks the client and, if present, the paying agent in sorted
// ID order to avoid lock-order deadlocks.
func (uc *WithdrawalUseCase) lockAccounts(ctx context.Context, tx Transaction, request *domain.WithdrawalRequest) (map[string]*domain.Account, error) {
	ids := []string{request.ClientID}
	if request.RequestingAgentID != nil && *request.RequestingAgentID != request.ClientID {
		ids = append(ids, *request.RequestingAgentID)
	}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(ids) {
		return nil, domain.ErrAccountNotFound
	}

	m := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a
	}

	return m, nil
}

// applyAdjustment writes the entry row and the new balance for one mutation.
func (uc *WithdrawalUseCase) applyAdjustment(ctx context.Context, tx Transaction, account *domain.Account, kind domain.BalanceKind, delta int64, refType, refID string, now time.Time) error {
	previous := account.BalanceOf(kind)
	current := account.ApplyAdjust(kind, delta)

	entry := &domain.Entry{
		ID:              uc.idGen.Generate(),
		AccountID:       account.ID,
		BalanceKind:     kind,
		ReferenceType:   refType,
		ReferenceID:     refID,
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

func (uc *WithdrawalUseCase) auditLog(ctx context.Context, action domain.AuditAction, resourceID string, before, after domain.JSON) *domain.AuditLog {
	actorID := "system"
	if actor, ok := domain.ActorFromContext(ctx); ok {
		actorID = actor.ID
	}

	return &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      actorID,
		Action:       string(action),
		ResourceType: "withdrawal",
		ResourceID:   resourceID,
		BeforeState:  before,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    uc.clock.Now().UTC(),
	}
}

func (uc *WithdrawalUseCase) countRejection(reason string) {
	if uc.metrics != nil {
		uc.metrics.WithdrawalsRejected.WithLabelValues(reason).Inc()
	}
}

// IsValidationError reports whether an error should surface to the caller
// without retry.
func IsValidationError(err error) bool {
	return errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrInvalidVerificationCode) ||
		errors.Is(err, domain.ErrInvalidStateTransition) ||
		errors.Is(err, domain.ErrSelfConfirmationDenied) ||
		errors.Is(err, domain.ErrNotAuthorizedToConfirm)
}
