package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/usecase"
)

// QuotaRepository implements usecase.QuotaRepository.
type QuotaRepository struct {
	pool *pgxpool.Pool
}

// NewQuotaRepository creates a new QuotaRepository.
func NewQuotaRepository(pool *pgxpool.Pool) *QuotaRepository {
	return &QuotaRepository{pool: pool}
}

// GetOrCreateForUpdate locks the agent's quota row for the given date,
// inserting an empty row on the agent's first deposit of the day. The upsert
// plus FOR UPDATE makes the row a serialization point for the agent's
// deposits.
func (r *QuotaRepository) GetOrCreateForUpdate(ctx context.Context, tx usecase.Transaction, agentID, date string) (*domain.DailyAgentQuota, error) {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO agent_daily_quotas (agent_id, date, accumulated_volume, quota_reached_before_cutoff, created_at, updated_at)
		VALUES ($1, $2, 0, FALSE, NOW(), NOW())
		ON CONFLICT (agent_id, date) DO NOTHING`,
		agentID, date,
	)
	if err != nil {
		return nil, err
	}

	var quota domain.DailyAgentQuota
	err = pgxTx.QueryRow(ctx, `
		SELECT agent_id, date, accumulated_volume, quota_reached_before_cutoff, created_at, updated_at
		FROM agent_daily_quotas
		WHERE agent_id = $1 AND date = $2
		FOR UPDATE`,
		agentID, date,
	).Scan(
		&quota.AgentID,
		&quota.Date,
		&quota.AccumulatedVolume,
		&quota.QuotaReachedBeforeCutoff,
		&quota.CreatedAt,
		&quota.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &quota, nil
}

// Update writes the accumulated volume and the sticky bonus flag.
func (r *QuotaRepository) Update(ctx context.Context, tx usecase.Transaction, quota *domain.DailyAgentQuota) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		UPDATE agent_daily_quotas
		SET accumulated_volume = $3, quota_reached_before_cutoff = $4, updated_at = $5
		WHERE agent_id = $1 AND date = $2`,
		quota.AgentID,
		quota.Date,
		quota.AccumulatedVolume,
		quota.QuotaReachedBeforeCutoff,
		quota.UpdatedAt,
	)

	return err
}
