package domain

import "github.com/shopspring/decimal"

// Territory is the jurisdiction of a party, used to tell domestic from
// international transfers. Compared by exact code ("CD", "UG", ...).
type Territory string

// Same reports whether two territories are the same jurisdiction.
func (t Territory) Same(other Territory) bool {
	return t == other
}

// Transfer fee tiers.
var (
	domesticRate      = decimal.NewFromFloat(0.01)
	internationalLow  = decimal.NewFromFloat(0.065)
	internationalHigh = decimal.NewFromFloat(0.05)
	agentFeeShare     = decimal.NewFromFloat(0.10)

	depositBaseRate  = decimal.NewFromFloat(0.005)
	depositBonusRate = decimal.NewFromFloat(0.01)

	withdrawalAgentRate = decimal.NewFromFloat(0.002)
)

// InternationalTierThreshold is the amount at and above which the lower
// international rate applies.
const InternationalTierThreshold int64 = 800_000

// FeeQuote is the ephemeral result of a fee computation. Same inputs always
// produce the same quote; nothing here is persisted.
type FeeQuote struct {
	Fee                int64
	RatePercent        decimal.Decimal
	AgentCommission    int64
	PlatformCommission int64
}

// QuoteTransferFee computes the fee for a peer transfer and how it splits
// between the initiating agent and the platform. Rates are applied with
// decimal arithmetic and rounded once, at the end.
func QuoteTransferFee(amount int64, sender, recipient Territory, role ActorRole) (FeeQuote, error) {
	if amount <= 0 {
		return FeeQuote{}, ErrInvalidAmount
	}

	var rate decimal.Decimal
	switch {
	case sender.Same(recipient):
		rate = domesticRate
	case amount < InternationalTierThreshold:
		rate = internationalLow
	default:
		rate = internationalHigh
	}

	fee := decimal.NewFromInt(amount).Mul(rate).Round(0).IntPart()

	var agentCut int64
	if !sender.Same(recipient) && role.EarnsAgentCut() {
		agentCut = decimal.NewFromInt(fee).Mul(agentFeeShare).Round(0).IntPart()
	}

	return FeeQuote{
		Fee:                fee,
		RatePercent:        rate.Mul(decimal.NewFromInt(100)),
		AgentCommission:    agentCut,
		PlatformCommission: fee - agentCut,
	}, nil
}

// DepositCommissionRate returns the agent commission rate for an assisted
// deposit. The bonus tier applies once the agent's daily quota was reached
// before the cutoff.
func DepositCommissionRate(bonusTier bool) decimal.Decimal {
	if bonusTier {
		return depositBonusRate
	}
	return depositBaseRate
}

// DepositCommission computes the agent's commission on an assisted deposit.
// The client pays no fee on deposits.
func DepositCommission(amount int64, bonusTier bool) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return decimal.NewFromInt(amount).Mul(DepositCommissionRate(bonusTier)).Round(0).IntPart(), nil
}

// WithdrawalCommission computes the commission earned by an agent confirming
// a withdrawal. It is compensation funded by the settlement, never an extra
// debit to the client.
func WithdrawalCommission(amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return decimal.NewFromInt(amount).Mul(withdrawalAgentRate).Round(0).IntPart(), nil
}
