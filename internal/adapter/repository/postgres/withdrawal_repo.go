package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/usecase"
)

const withdrawalColumns = `id, client_id, requesting_agent_id, initiator_id, amount, destination_phone,
	verification_code, status, reject_reason, agent_commission, client_balance_after,
	created_at, updated_at, settled_at`

// WithdrawalRepository implements usecase.WithdrawalRepository.
type WithdrawalRepository struct {
	pool *pgxpool.Pool
}

// NewWithdrawalRepository creates a new WithdrawalRepository.
func NewWithdrawalRepository(pool *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{pool: pool}
}

// Create inserts a new withdrawal request.
func (r *WithdrawalRepository) Create(ctx context.Context, tx usecase.Transaction, request *domain.WithdrawalRequest) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO withdrawal_requests
			(id, client_id, requesting_agent_id, initiator_id, amount, destination_phone,
			 verification_code, status, reject_reason, agent_commission, client_balance_after,
			 created_at, updated_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		request.ID,
		request.ClientID,
		request.RequestingAgentID,
		request.InitiatorID,
		request.Amount,
		request.DestinationPhone,
		request.VerificationCode,
		string(request.Status),
		request.RejectReason,
		request.AgentCommission,
		request.ClientBalanceAfter,
		request.CreatedAt,
		request.UpdatedAt,
		request.SettledAt,
	)

	return err
}

// GetByID retrieves a withdrawal request by ID.
func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*domain.WithdrawalRequest, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1`, id)
	return scanWithdrawal(row)
}

// GetByIDForUpdate retrieves a withdrawal request with a FOR UPDATE lock.
// The lock serializes concurrent confirmations of the same request.
func (r *WithdrawalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.WithdrawalRequest, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`, id)
	return scanWithdrawal(row)
}

// Update writes the request's mutable settlement fields.
func (r *WithdrawalRepository) Update(ctx context.Context, tx usecase.Transaction, request *domain.WithdrawalRequest) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE withdrawal_requests
		SET status = $2, reject_reason = $3, agent_commission = $4,
			client_balance_after = $5, updated_at = $6, settled_at = $7
		WHERE id = $1`,
		request.ID,
		string(request.Status),
		request.RejectReason,
		request.AgentCommission,
		request.ClientBalanceAfter,
		request.UpdatedAt,
		request.SettledAt,
	)

	return err
}

// ListByClient retrieves a client's withdrawal requests, newest first.
func (r *WithdrawalRepository) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*domain.WithdrawalRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawal_requests
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.WithdrawalRequest
	for rows.Next() {
		request, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}

func scanWithdrawal(row pgx.Row) (*domain.WithdrawalRequest, error) {
	var (
		request domain.WithdrawalRequest
		status  string
	)

	err := row.Scan(
		&request.ID,
		&request.ClientID,
		&request.RequestingAgentID,
		&request.InitiatorID,
		&request.Amount,
		&request.DestinationPhone,
		&request.VerificationCode,
		&status,
		&request.RejectReason,
		&request.AgentCommission,
		&request.ClientBalanceAfter,
		&request.CreatedAt,
		&request.UpdatedAt,
		&request.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWithdrawalNotFound
		}

		return nil, err
	}

	request.Status = domain.WithdrawalStatus(status)

	return &request, nil
}
