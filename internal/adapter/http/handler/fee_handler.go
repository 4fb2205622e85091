package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mosolopay/mosolo/internal/adapter/http/dto"
	"github.com/mosolopay/mosolo/internal/usecase"
)

// FeeHandler prices transfers without executing them.
type FeeHandler struct {
	feeUC *usecase.FeeUseCase
}

// NewFeeHandler creates a new FeeHandler.
func NewFeeHandler(feeUC *usecase.FeeUseCase) *FeeHandler {
	return &FeeHandler{feeUC: feeUC}
}

// Quote returns the fee and commission split for a prospective transfer.
func (h *FeeHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req dto.QuoteFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	quote, err := h.feeUC.QuoteFee(req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to quote fee", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.FeeQuoteFromDomain(quote))
}
