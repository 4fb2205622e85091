package domain

import "time"

// WithdrawalStatus is the life-cycle state of a withdrawal request.
type WithdrawalStatus string

const (
	// WithdrawalPending awaits the client's own confirmation step.
	WithdrawalPending WithdrawalStatus = "pending"
	// WithdrawalAgentPending awaits the paying agent's confirmation input.
	WithdrawalAgentPending WithdrawalStatus = "agent_pending"
	WithdrawalCompleted    WithdrawalStatus = "completed"
	WithdrawalRejected     WithdrawalStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s WithdrawalStatus) Terminal() bool {
	return s == WithdrawalCompleted || s == WithdrawalRejected
}

// Rejection reasons recorded on rejected requests.
const (
	RejectReasonInsufficientFunds = "insufficient_funds"
	RejectReasonCodeMismatch      = "code_mismatch"
	RejectReasonCancelled         = "cancelled"
)

// WithdrawalRequest is one attempt to move funds out of a client's primary
// balance. Terminal requests are never deleted; they are the audit trail.
type WithdrawalRequest struct {
	ID                string
	ClientID          string
	RequestingAgentID *string
	InitiatorID       string
	Amount            int64
	DestinationPhone  string
	VerificationCode  string
	Status            WithdrawalStatus
	RejectReason      *string
	// Settlement outcome, stored so retried confirmations can replay it.
	AgentCommission    int64
	ClientBalanceAfter int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
	SettledAt          *time.Time
}

// Validate checks a request at creation time.
func (w *WithdrawalRequest) Validate() error {
	if w.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// CanTransition reports whether the request may leave its current state.
func (w *WithdrawalRequest) CanTransition() error {
	if w.Status.Terminal() {
		return ErrInvalidStateTransition
	}
	return nil
}

// CodeMatches checks the supplied verification code against the single-use
// code bound to this request.
func (w *WithdrawalRequest) CodeMatches(code string) bool {
	return code != "" && w.VerificationCode == code
}

// AuthorizeConfirmer checks that the party supplying the code is allowed to
// confirm. Self-service requests are confirmed by the owning client. Agent
// requests are confirmed by the counterparty: the named agent when the client
// initiated, the client when the agent initiated. The identity that created
// the request can never confirm it.
func (w *WithdrawalRequest) AuthorizeConfirmer(partyID string) error {
	switch w.Status {
	case WithdrawalPending:
		if partyID != w.ClientID {
			return ErrNotAuthorizedToConfirm
		}
	case WithdrawalAgentPending:
		isAgent := w.RequestingAgentID != nil && partyID == *w.RequestingAgentID
		if !isAgent && partyID != w.ClientID {
			return ErrNotAuthorizedToConfirm
		}
		if partyID == w.InitiatorID {
			return ErrSelfConfirmationDenied
		}
	}

	return nil
}

// AuthorizeRejecter checks that the party cancelling the request is either
// the client or the agent it names.
func (w *WithdrawalRequest) AuthorizeRejecter(partyID string) error {
	if partyID == w.ClientID {
		return nil
	}
	if w.RequestingAgentID != nil && partyID == *w.RequestingAgentID {
		return nil
	}
	return ErrNotAuthorizedToConfirm
}

// SettlementResult is what a (possibly replayed) confirmation returns.
type SettlementResult struct {
	RequestID       string
	Status          WithdrawalStatus
	Amount          int64
	AgentCommission int64
	ClientBalance   int64
	SettledAt       time.Time
}

// Result builds the settlement result stored on a completed request.
func (w *WithdrawalRequest) Result() *SettlementResult {
	var settledAt time.Time
	if w.SettledAt != nil {
		settledAt = *w.SettledAt
	}

	return &SettlementResult{
		RequestID:       w.ID,
		Status:          w.Status,
		Amount:          w.Amount,
		AgentCommission: w.AgentCommission,
		ClientBalance:   w.ClientBalanceAfter,
		SettledAt:       settledAt,
	}
}
