package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mosolopay/mosolo/internal/adapter/http/dto"
	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/usecase"
)

// LedgerHandler exposes balances, entries and commission sweeps.
type LedgerHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC *usecase.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// GetBalance returns an account's current balances.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.ledgerUC.GetBalance(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get balance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID:         account.ID,
		Balance:           account.Balance,
		CommissionBalance: account.CommissionBalance,
	})
}

// ListEntries lists ledger entries for an account.
func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.ledgerUC.ListEntries(r.Context(), id, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Adjust applies a manual balance adjustment.
func (h *LedgerHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.AdjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	kind := domain.BalancePrimary
	if req.Kind != "" {
		kind = domain.BalanceKind(req.Kind)
	}

	balance, err := h.ledgerUC.Adjust(r.Context(), usecase.AdjustInput{
		AccountID:     id,
		Delta:         req.Delta,
		Kind:          kind,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to adjust balance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: id,
		Balance:   balance,
	})
}

// SweepCommission moves an agent's commission balance into their primary
// balance.
func (h *LedgerHandler) SweepCommission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	swept, err := h.ledgerUC.SweepCommission(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to sweep commission", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.SweepResponse{
		AccountID: id,
		Swept:     swept,
	})
}
