package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mosolopay/mosolo/internal/adapter/http/dto"
	"github.com/mosolopay/mosolo/internal/usecase"
)

// WithdrawalHandler handles withdrawal request HTTP endpoints.
type WithdrawalHandler struct {
	withdrawalUC *usecase.WithdrawalUseCase
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(withdrawalUC *usecase.WithdrawalUseCase) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalUC: withdrawalUC}
}

// Create opens a new withdrawal request and returns the verification code
// to the requester.
func (h *WithdrawalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	request, err := h.withdrawalUC.CreateWithdrawal(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create withdrawal request", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateWithdrawalFromDomain(request))
}

// Confirm settles a withdrawal request against its verification code.
func (h *WithdrawalHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing withdrawal ID", "")
		return
	}

	var req dto.ConfirmWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.withdrawalUC.ConfirmWithdrawal(r.Context(), id, req.Code, req.PartyID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to confirm withdrawal", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(result))
}

// Reject cancels a pending withdrawal request.
func (h *WithdrawalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing withdrawal ID", "")
		return
	}

	var req dto.RejectWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.withdrawalUC.RejectWithdrawal(r.Context(), id, req.PartyID); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reject withdrawal", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get retrieves a withdrawal request by ID.
func (h *WithdrawalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing withdrawal ID", "")
		return
	}

	request, err := h.withdrawalUC.GetWithdrawal(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get withdrawal", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.WithdrawalFromDomain(request))
}

// ListByClient lists a client's withdrawal requests.
func (h *WithdrawalHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "missing client ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	requests, err := h.withdrawalUC.ListWithdrawalsByClient(r.Context(), usecase.ListWithdrawalsByClientInput{
		ClientID: clientID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list withdrawals", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.WithdrawalsFromDomain(requests))
}
