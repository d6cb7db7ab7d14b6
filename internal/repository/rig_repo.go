package repository

import (
	"context"

	"quantum_clicker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RigRepository struct {
	db *pgxpool.Pool
}

func NewRigRepository(db *pgxpool.Pool) *RigRepository {
	return &RigRepository{db: db}
}

func (r *RigRepository) ListActive(ctx context.Context, playerID int64) ([]domain.MiningRig, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, player_id, rig_type, hash_rate, efficiency, active, purchased_at
		FROM mining_rigs
		WHERE player_id = $1 AND active
		ORDER BY id`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRigs(rows)
}

// ListActiveWithTx reads the fleet inside a mutation so the mining roll
// uses the same snapshot the debit commits against.
func (r *RigRepository) ListActiveWithTx(ctx context.Context, tx pgx.Tx, playerID int64) ([]domain.MiningRig, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, player_id, rig_type, hash_rate, efficiency, active, purchased_at
		FROM mining_rigs
		WHERE player_id = $1 AND active
		ORDER BY id`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRigs(rows)
}

// AddWithTx inserts a purchased rig inside the purchase transaction.
func (r *RigRepository) AddWithTx(ctx context.Context, tx pgx.Tx, playerID int64, spec *domain.RigSpec) (*domain.MiningRig, error) {
	rig := &domain.MiningRig{
		PlayerID:   playerID,
		RigType:    spec.Type,
		HashRate:   spec.HashRate,
		Efficiency: spec.Efficiency,
		Active:     true,
	}
	err := tx.QueryRow(ctx, `
		INSERT INTO mining_rigs (player_id, rig_type, hash_rate, efficiency, active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, purchased_at`,
		playerID, spec.Type, spec.HashRate, spec.Efficiency,
	).Scan(&rig.ID, &rig.PurchasedAt)
	if err != nil {
		return nil, err
	}
	return rig, nil
}

// BoostEfficiencyWithTx raises every active rig's efficiency by delta,
// capped at 1.0. Returns the number of rigs affected.
func (r *RigRepository) BoostEfficiencyWithTx(ctx context.Context, tx pgx.Tx, playerID int64, delta float64) (int64, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE mining_rigs
		SET efficiency = LEAST(1.0, efficiency + $2)
		WHERE player_id = $1 AND active AND efficiency < 1.0`,
		playerID, delta)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func collectRigs(rows pgx.Rows) ([]domain.MiningRig, error) {
	var res []domain.MiningRig
	for rows.Next() {
		var rig domain.MiningRig
		if err := rows.Scan(&rig.ID, &rig.PlayerID, &rig.RigType, &rig.HashRate,
			&rig.Efficiency, &rig.Active, &rig.PurchasedAt); err != nil {
			return nil, err
		}
		res = append(res, rig)
	}
	return res, rows.Err()
}
