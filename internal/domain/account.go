package domain

import "time"

// ActorRole classifies who an account (or request initiator) is.
type ActorRole string

const (
	RoleUser  ActorRole = "user"
	RoleAgent ActorRole = "agent"
	RoleAdmin ActorRole = "admin"
)

var validRoles = map[ActorRole]bool{
	RoleUser:  true,
	RoleAgent: true,
	RoleAdmin: true,
}

// IsValid checks if the role is a known role.
func (r ActorRole) IsValid() bool {
	return validRoles[r]
}

// EarnsAgentCut reports whether this role takes an agent share of transfer fees.
// Unknown roles fall back to the non-agent rates.
func (r ActorRole) EarnsAgentCut() bool {
	return r == RoleAgent
}

// BalanceKind selects which of an account's balances a mutation targets.
type BalanceKind string

const (
	BalancePrimary    BalanceKind = "primary"
	BalanceCommission BalanceKind = "commission"
)

// Account holds a party's monetary state. Balance and CommissionBalance are
// in the smallest currency unit and must never go negative.
type Account struct {
	ID                string
	Phone             string
	Name              string
	Role              ActorRole
	Territory         Territory
	Balance           int64
	CommissionBalance int64
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsAgent reports whether the account accrues commissions.
func (a *Account) IsAgent() bool {
	return a.Role == RoleAgent
}

// BalanceOf returns the requested balance.
func (a *Account) BalanceOf(kind BalanceKind) int64 {
	if kind == BalanceCommission {
		return a.CommissionBalance
	}
	return a.Balance
}

// ValidateAdjust checks whether applying delta to the given balance would
// drive it negative.
func (a *Account) ValidateAdjust(kind BalanceKind, delta int64) error {
	if a.BalanceOf(kind)+delta < 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyAdjust returns the balance after applying delta. Callers must run
// ValidateAdjust first.
func (a *Account) ApplyAdjust(kind BalanceKind, delta int64) int64 {
	return a.BalanceOf(kind) + delta
}

// SetBalance records the new value of the given balance on the in-memory copy.
func (a *Account) SetBalance(kind BalanceKind, value int64) {
	if kind == BalanceCommission {
		a.CommissionBalance = value
		return
	}
	a.Balance = value
}
