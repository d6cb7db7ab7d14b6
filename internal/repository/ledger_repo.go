package repository

import (
	"context"

	"quantum_clicker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepository appends and reads the audit trail. Rows are never
// updated or deleted.
type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// CreateWithTx appends one entry inside the caller's transaction so the
// entry commits or rolls back together with the balance change it records.
func (r *LedgerRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	return tx.QueryRow(ctx, `
		INSERT INTO ledger (player_id, entry_type, coins_delta, hash_delta, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		e.PlayerID, e.Type, e.CoinsDelta, e.HashDelta, e.Reason,
	).Scan(&e.ID, &e.CreatedAt)
}

// ListByPlayer returns the newest entries first.
func (r *LedgerRepository) ListByPlayer(ctx context.Context, playerID int64, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, player_id, entry_type, coins_delta, hash_delta, reason, created_at
		FROM ledger
		WHERE player_id = $1
		ORDER BY id DESC
		LIMIT $2`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.PlayerID, &e.Type, &e.CoinsDelta, &e.HashDelta, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
