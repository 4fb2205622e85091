package domain

import "time"

// Event types
const (
	EventTypeWithdrawalCreated  = "withdrawal.created"
	EventTypeWithdrawalSettled  = "withdrawal.settled"
	EventTypeWithdrawalRejected = "withdrawal.rejected"
	EventTypeDepositRecorded    = "deposit.recorded"
	EventTypeQuotaReached       = "quota.reached"
	EventTypeTransferCreated    = "transfer.created"
	EventTypeAccountCreated     = "account.created"
)

// Aggregate types
const (
	AggregateTypeWithdrawal = "withdrawal"
	AggregateTypeDeposit    = "deposit"
	AggregateTypeTransfer   = "transfer"
	AggregateTypeAccount    = "account"
	AggregateTypeQuota      = "quota"
)

// OutboxEvent represents an informational signal to be published. Delivery
// is fire-and-forget; nothing in the settlement protocol depends on it.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// WithdrawalSettledEvent payload
type WithdrawalSettledEvent struct {
	RequestID       string `json:"request_id"`
	ClientID        string `json:"client_id"`
	AgentID         string `json:"agent_id,omitempty"`
	Amount          int64  `json:"amount"`
	AgentCommission int64  `json:"agent_commission"`
	SettledAt       string `json:"settled_at"`
}

// Payload converts the event to an outbox payload.
func (e WithdrawalSettledEvent) Payload() map[string]any {
	p := map[string]any{
		"request_id":       e.RequestID,
		"client_id":        e.ClientID,
		"amount":           e.Amount,
		"agent_commission": e.AgentCommission,
		"settled_at":       e.SettledAt,
	}
	if e.AgentID != "" {
		p["agent_id"] = e.AgentID
	}
	return p
}

// QuotaReachedEvent payload
type QuotaReachedEvent struct {
	AgentID string `json:"agent_id"`
	Date    string `json:"date"`
	Volume  int64  `json:"volume"`
}

// Payload converts the event to an outbox payload.
func (e QuotaReachedEvent) Payload() map[string]any {
	return map[string]any{
		"agent_id": e.AgentID,
		"date":     e.Date,
		"volume":   e.Volume,
	}
}

// DepositRecordedEvent payload
type DepositRecordedEvent struct {
	AgentID        string `json:"agent_id"`
	ClientID       string `json:"client_id"`
	Amount         int64  `json:"amount"`
	Commission     int64  `json:"commission"`
	CommissionRate string `json:"commission_rate"`
}

// Payload converts the event to an outbox payload.
func (e DepositRecordedEvent) Payload() map[string]any {
	return map[string]any{
		"agent_id":        e.AgentID,
		"client_id":       e.ClientID,
		"amount":          e.Amount,
		"commission":      e.Commission,
		"commission_rate": e.CommissionRate,
	}
}
