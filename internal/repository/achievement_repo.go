package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AchievementRepository struct {
	db *pgxpool.Pool
}

func NewAchievementRepository(db *pgxpool.Pool) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// Unlocked returns the set of achievement ids the player already holds.
func (r *AchievementRepository) Unlocked(ctx context.Context, playerID int64) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `
		SELECT achievement_id FROM achievements_unlocked WHERE player_id = $1`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res[id] = true
	}
	return res, rows.Err()
}

// Grant records an unlock. Returns false when the achievement was already
// held, which makes re-evaluation after crashes or races a no-op.
func (r *AchievementRepository) Grant(ctx context.Context, playerID int64, achievementID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO achievements_unlocked (player_id, achievement_id)
		VALUES ($1, $2)
		ON CONFLICT (player_id, achievement_id) DO NOTHING`,
		playerID, achievementID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
