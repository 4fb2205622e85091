package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID                string    `json:"id"`
	Phone             string    `json:"phone"`
	Name              string    `json:"name"`
	Role              string    `json:"role"`
	Territory         string    `json:"territory"`
	Balance           int64     `json:"balance"`
	CommissionBalance int64     `json:"commission_balance"`
	Version           int64     `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:                a.ID,
		Phone:             a.Phone,
		Name:              a.Name,
		Role:              string(a.Role),
		Territory:         string(a.Territory),
		Balance:           a.Balance,
		CommissionBalance: a.CommissionBalance,
		Version:           a.Version,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// WithdrawalResponse represents a withdrawal request in API responses.
// The verification code is never echoed back after creation.
type WithdrawalResponse struct {
	ID                 string     `json:"id"`
	ClientID           string     `json:"client_id"`
	RequestingAgentID  *string    `json:"requesting_agent_id,omitempty"`
	InitiatorID        string     `json:"initiator_id"`
	Amount             int64      `json:"amount"`
	DestinationPhone   string     `json:"destination_phone"`
	Status             string     `json:"status"`
	RejectReason       *string    `json:"reject_reason,omitempty"`
	AgentCommission    int64      `json:"agent_commission,omitempty"`
	ClientBalanceAfter int64      `json:"client_balance_after,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	SettledAt          *time.Time `json:"settled_at,omitempty"`
}

// WithdrawalFromDomain converts a domain withdrawal request to a response.
func WithdrawalFromDomain(w *domain.WithdrawalRequest) *WithdrawalResponse {
	return &WithdrawalResponse{
		ID:                 w.ID,
		ClientID:           w.ClientID,
		RequestingAgentID:  w.RequestingAgentID,
		InitiatorID:        w.InitiatorID,
		Amount:             w.Amount,
		DestinationPhone:   w.DestinationPhone,
		Status:             string(w.Status),
		RejectReason:       w.RejectReason,
		AgentCommission:    w.AgentCommission,
		ClientBalanceAfter: w.ClientBalanceAfter,
		CreatedAt:          w.CreatedAt,
		UpdatedAt:          w.UpdatedAt,
		SettledAt:          w.SettledAt,
	}
}

// WithdrawalsFromDomain converts domain withdrawal requests to responses.
func WithdrawalsFromDomain(requests []*domain.WithdrawalRequest) []*WithdrawalResponse {
	result := make([]*WithdrawalResponse, len(requests))
	for i, w := range requests {
		result[i] = WithdrawalFromDomain(w)
	}
	return result
}

// CreateWithdrawalResponse is the creation response. It is the only place
// the verification code leaves the service.
type CreateWithdrawalResponse struct {
	*WithdrawalResponse
	VerificationCode string `json:"verification_code"`
}

// CreateWithdrawalFromDomain converts a freshly created request, code
// included.
func CreateWithdrawalFromDomain(w *domain.WithdrawalRequest) *CreateWithdrawalResponse {
	return &CreateWithdrawalResponse{
		WithdrawalResponse: WithdrawalFromDomain(w),
		VerificationCode:   w.VerificationCode,
	}
}

// SettlementResponse reports the outcome of a confirmed withdrawal.
type SettlementResponse struct {
	RequestID       string    `json:"request_id"`
	Status          string    `json:"status"`
	Amount          int64     `json:"amount"`
	AgentCommission int64     `json:"agent_commission"`
	ClientBalance   int64     `json:"client_balance"`
	SettledAt       time.Time `json:"settled_at"`
}

// SettlementFromDomain converts a settlement result to a response.
func SettlementFromDomain(r *domain.SettlementResult) *SettlementResponse {
	return &SettlementResponse{
		RequestID:       r.RequestID,
		Status:          string(r.Status),
		Amount:          r.Amount,
		AgentCommission: r.AgentCommission,
		ClientBalance:   r.ClientBalance,
		SettledAt:       r.SettledAt,
	}
}

// DepositResponse reports the outcome of an agent cash-in.
type DepositResponse struct {
	DepositID        string          `json:"deposit_id"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	Commission       int64           `json:"commission"`
	QuotaJustReached bool            `json:"quota_just_reached"`
	ClientBalance    int64           `json:"client_balance"`
	AgentCommission  int64           `json:"agent_commission"`
}

// DepositFromResult converts a deposit result to a response.
func DepositFromResult(r *usecase.DepositResult) *DepositResponse {
	return &DepositResponse{
		DepositID:        r.DepositID,
		CommissionRate:   r.CommissionRate,
		Commission:       r.Commission,
		QuotaJustReached: r.QuotaJustReached,
		ClientBalance:    r.ClientBalance,
		AgentCommission:  r.AgentCommission,
	}
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID                 string         `json:"id"`
	FromAccountID      string         `json:"from_account_id"`
	ToAccountID        string         `json:"to_account_id"`
	Amount             int64          `json:"amount"`
	Fee                int64          `json:"fee"`
	AgentCommission    int64          `json:"agent_commission"`
	PlatformCommission int64          `json:"platform_commission"`
	InitiatorRole      string         `json:"initiator_role"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:                 t.ID,
		FromAccountID:      t.FromAccountID,
		ToAccountID:        t.ToAccountID,
		Amount:             t.Amount,
		Fee:                t.Fee,
		AgentCommission:    t.AgentCommission,
		PlatformCommission: t.PlatformCommission,
		InitiatorRole:      string(t.InitiatorRole),
		Metadata:           t.Metadata,
		CreatedAt:          t.CreatedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// FeeQuoteResponse represents a priced transfer.
type FeeQuoteResponse struct {
	Fee                int64           `json:"fee"`
	RatePercent        decimal.Decimal `json:"rate_percent"`
	AgentCommission    int64           `json:"agent_commission"`
	PlatformCommission int64           `json:"platform_commission"`
}

// FeeQuoteFromDomain converts a fee quote to a response.
func FeeQuoteFromDomain(q domain.FeeQuote) *FeeQuoteResponse {
	return &FeeQuoteResponse{
		Fee:                q.Fee,
		RatePercent:        q.RatePercent,
		AgentCommission:    q.AgentCommission,
		PlatformCommission: q.PlatformCommission,
	}
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	BalanceKind     string    `json:"balance_kind"`
	ReferenceType   string    `json:"reference_type"`
	ReferenceID     string    `json:"reference_id"`
	Amount          int64     `json:"amount"`
	PreviousBalance int64     `json:"previous_balance"`
	CurrentBalance  int64     `json:"current_balance"`
	AccountVersion  int64     `json:"account_version"`
	CreatedAt       time.Time `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:              e.ID,
		AccountID:       e.AccountID,
		BalanceKind:     string(e.BalanceKind),
		ReferenceType:   e.ReferenceType,
		ReferenceID:     e.ReferenceID,
		Amount:          e.Amount,
		PreviousBalance: e.PreviousBalance,
		CurrentBalance:  e.CurrentBalance,
		AccountVersion:  e.AccountVersion,
		CreatedAt:       e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// BalanceResponse reports an account's balances.
type BalanceResponse struct {
	AccountID         string `json:"account_id"`
	Balance           int64  `json:"balance"`
	CommissionBalance int64  `json:"commission_balance"`
}

// SweepResponse reports a commission sweep.
type SweepResponse struct {
	AccountID string `json:"account_id"`
	Swept     int64  `json:"swept"`
}

// AuditLogResponse represents an audit trail row.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	ActorID      string         `json:"actor_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	RequestID    string         `json:"request_id,omitempty"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			ActorID:      l.ActorID,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       l.Status,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
