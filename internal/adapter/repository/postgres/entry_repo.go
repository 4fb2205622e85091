package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mosolopay/mosolo/internal/domain"
	"github.com/mosolopay/mosolo/internal/usecase"
)

const entryColumns = `id, account_id, balance_kind, reference_type, reference_id, amount,
	previous_balance, current_balance, account_version, created_at`

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Create inserts a ledger entry. Entries are append-only.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO entries
			(id, account_id, balance_kind, reference_type, reference_id, amount,
			 previous_balance, current_balance, account_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID,
		entry.AccountID,
		string(entry.BalanceKind),
		entry.ReferenceType,
		entry.ReferenceID,
		entry.Amount,
		entry.PreviousBalance,
		entry.CurrentBalance,
		entry.AccountVersion,
		entry.CreatedAt,
	)

	return err
}

// GetByAccount retrieves an account's entries, newest first.
func (r *EntryRepository) GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE account_id = $1
		ORDER BY created_at DESC, account_version DESC
		LIMIT $2 OFFSET $3`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetByReference retrieves the entries produced by one operation.
func (r *EntryRepository) GetByReference(ctx context.Context, referenceType, referenceID string) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY created_at`, referenceType, referenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]*domain.Entry, error) {
	var entries []*domain.Entry

	for rows.Next() {
		var (
			entry domain.Entry
			kind  string
		)

		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&kind,
			&entry.ReferenceType,
			&entry.ReferenceID,
			&entry.Amount,
			&entry.PreviousBalance,
			&entry.CurrentBalance,
			&entry.AccountVersion,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		entry.BalanceKind = domain.BalanceKind(kind)
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
