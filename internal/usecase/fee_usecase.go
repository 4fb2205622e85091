package usecase

import (
	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/infrastructure/metrics"
)

// FeeUseCase exposes the fee calculator. Quotes are pure and ephemeral;
// nothing is persisted or looked up.
type FeeUseCase struct {
	metrics *metrics.Metrics
}

// NewFeeUseCase creates a new FeeUseCase.
func NewFeeUseCase(metrics *metrics.Metrics) *FeeUseCase {
	return &FeeUseCase{metrics: metrics}
}

// QuoteFeeInput represents input for quoting a transfer fee.
type QuoteFeeInput struct {
	Amount             int64
	SenderTerritory    domain.Territory
	RecipientTerritory domain.Territory
	ActorRole          domain.ActorRole
}

// QuoteFee computes the fee and commission split for a transfer.
func (uc *FeeUseCase) QuoteFee(input QuoteFeeInput) (domain.FeeQuote, error) {
	quote, err := domain.QuoteTransferFee(input.Amount, input.SenderTerritory, input.RecipientTerritory, input.ActorRole)
	if err != nil {
		return domain.FeeQuote{}, err
	}

	if uc.metrics != nil {
		uc.metrics.FeeQuotes.Inc()
	}

	return quote, nil
}
