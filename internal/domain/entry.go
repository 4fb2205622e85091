package domain

import "time"

// Reference types linking an entry to the operation that produced it.
const (
	ReferenceWithdrawal = "withdrawal"
	ReferenceDeposit    = "deposit"
	ReferenceTransfer   = "transfer"
	ReferenceAdjustment = "adjustment"
	ReferenceSweep      = "commission_sweep"
)

// Entry records a single balance mutation with before/after snapshots.
type Entry struct {
	ID              string
	AccountID       string
	BalanceKind     BalanceKind
	ReferenceType   string
	ReferenceID     string
	Amount          int64
	PreviousBalance int64
	CurrentBalance  int64
	AccountVersion  int64
	CreatedAt       time.Time
}
