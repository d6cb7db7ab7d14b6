package repository

import (
	"context"
	"time"

	"quantum_clicker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BoostRepository struct {
	db *pgxpool.Pool
}

func NewBoostRepository(db *pgxpool.Pool) *BoostRepository {
	return &BoostRepository{db: db}
}

// ActiveWithTx reads unexpired boosts relative to the caller's `now`, so
// expiry inside a mutation is evaluated against one timestamp.
func (r *BoostRepository) ActiveWithTx(ctx context.Context, tx pgx.Tx, playerID int64, now time.Time) ([]domain.Boost, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, player_id, category, multiplier, expires_at
		FROM boosts
		WHERE player_id = $1 AND expires_at > $2
		ORDER BY id`, playerID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBoosts(rows)
}

func (r *BoostRepository) Active(ctx context.Context, playerID int64, now time.Time) ([]domain.Boost, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, player_id, category, multiplier, expires_at
		FROM boosts
		WHERE player_id = $1 AND expires_at > $2
		ORDER BY id`, playerID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBoosts(rows)
}

// GrantWithTx attaches a boost inside the transaction that paid for it.
func (r *BoostRepository) GrantWithTx(ctx context.Context, tx pgx.Tx, playerID int64, cat domain.BoostCategory, mult float64, expiresAt time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO boosts (player_id, category, multiplier, expires_at)
		VALUES ($1, $2, $3, $4)`,
		playerID, cat, mult, expiresAt)
	return err
}

// PruneExpired clears boosts whose window has passed. Called by the clock
// worker; correctness never depends on it since reads filter by expiry.
func (r *BoostRepository) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM boosts WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func collectBoosts(rows pgx.Rows) ([]domain.Boost, error) {
	var res []domain.Boost
	for rows.Next() {
		var b domain.Boost
		if err := rows.Scan(&b.ID, &b.PlayerID, &b.Category, &b.Multiplier, &b.ExpiresAt); err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}
