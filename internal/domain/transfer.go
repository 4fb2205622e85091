package domain

import "time"

// Transfer represents a peer money movement between two accounts, with the
// fee and commission split computed at creation time.
type Transfer struct {
	ID                 string
	FromAccountID      string
	ToAccountID        string
	Amount             int64
	Fee                int64
	AgentCommission    int64
	PlatformCommission int64
	InitiatorRole      ActorRole
	Metadata           map[string]any
	CreatedAt          time.Time
}

// Validate validates a transfer request.
func (t *Transfer) Validate() error {
	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}

	if t.Amount <= 0 {
		return ErrInvalidAmount
	}

	return nil
}

// TotalDebit is what the sender's primary balance is reduced by.
func (t *Transfer) TotalDebit() int64 {
	return t.Amount + t.Fee
}
