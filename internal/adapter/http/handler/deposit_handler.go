package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mosolopay/mosolo/internal/adapter/http/dto"
	"github.com/mosolopay/mosolo/internal/usecase"
)

// DepositHandler handles agent cash-in HTTP endpoints.
type DepositHandler struct {
	depositUC *usecase.DepositUseCase
}

// NewDepositHandler creates a new DepositHandler.
func NewDepositHandler(depositUC *usecase.DepositUseCase) *DepositHandler {
	return &DepositHandler{depositUC: depositUC}
}

// Create records a deposit made by an agent on behalf of a client.
func (h *DepositHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.depositUC.RecordDeposit(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record deposit", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.DepositFromResult(result))
}
