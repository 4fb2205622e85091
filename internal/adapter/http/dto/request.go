package dto

import (
	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Phone     string `json:"phone"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Territory string `json:"territory"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Phone:     r.Phone,
		Name:      r.Name,
		Role:      domain.ActorRole(r.Role),
		Territory: domain.Territory(r.Territory),
	}
}

// CreateWithdrawalRequest represents a request to open a withdrawal.
type CreateWithdrawalRequest struct {
	ClientID         string  `json:"client_id"`
	Amount           int64   `json:"amount"`
	DestinationPhone string  `json:"destination_phone"`
	InitiatorRole    string  `json:"initiator_role"`
	InitiatorID      string  `json:"initiator_id"`
	AgentID          *string `json:"agent_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateWithdrawalRequest) ToUseCaseInput() usecase.CreateWithdrawalInput {
	return usecase.CreateWithdrawalInput{
		ClientID:         r.ClientID,
		Amount:           r.Amount,
		DestinationPhone: r.DestinationPhone,
		InitiatorRole:    domain.ActorRole(r.InitiatorRole),
		InitiatorID:      r.InitiatorID,
		AgentID:          r.AgentID,
	}
}

// ConfirmWithdrawalRequest carries the verification code supplied by the
// confirming party.
type ConfirmWithdrawalRequest struct {
	Code    string `json:"code"`
	PartyID string `json:"party_id"`
}

// RejectWithdrawalRequest identifies the party cancelling the request.
type RejectWithdrawalRequest struct {
	PartyID string `json:"party_id"`
}

// RecordDepositRequest represents an agent cash-in for a client.
type RecordDepositRequest struct {
	AgentID  string `json:"agent_id"`
	ClientID string `json:"client_id"`
	Amount   int64  `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordDepositRequest) ToUseCaseInput() usecase.RecordDepositInput {
	return usecase.RecordDepositInput{
		AgentID:  r.AgentID,
		ClientID: r.ClientID,
		Amount:   r.Amount,
	}
}

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	FromAccountID string         `json:"from_account_id"`
	ToAccountID   string         `json:"to_account_id"`
	Amount        int64          `json:"amount"`
	InitiatorRole string         `json:"initiator_role"`
	InitiatorID   string         `json:"initiator_id,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() usecase.CreateTransferInput {
	return usecase.CreateTransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		InitiatorRole: domain.ActorRole(r.InitiatorRole),
		InitiatorID:   r.InitiatorID,
		Metadata:      r.Metadata,
	}
}

// QuoteFeeRequest represents a request to price a transfer without
// executing it.
type QuoteFeeRequest struct {
	Amount             int64  `json:"amount"`
	SenderTerritory    string `json:"sender_territory"`
	RecipientTerritory string `json:"recipient_territory"`
	ActorRole          string `json:"actor_role"`
}

// ToUseCaseInput converts to use case input.
func (r *QuoteFeeRequest) ToUseCaseInput() usecase.QuoteFeeInput {
	return usecase.QuoteFeeInput{
		Amount:             r.Amount,
		SenderTerritory:    domain.Territory(r.SenderTerritory),
		RecipientTerritory: domain.Territory(r.RecipientTerritory),
		ActorRole:          domain.ActorRole(r.ActorRole),
	}
}

// AdjustBalanceRequest represents a manual ledger adjustment.
type AdjustBalanceRequest struct {
	Delta         int64  `json:"delta"`
	Kind          string `json:"kind,omitempty"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
}
