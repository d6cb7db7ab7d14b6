package repository

import (
	"context"

	"quantum_clicker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CardRepository struct {
	db *pgxpool.Pool
}

func NewCardRepository(db *pgxpool.Pool) *CardRepository {
	return &CardRepository{db: db}
}

// AddWithTx records a drawn card inside the pack purchase transaction.
func (r *CardRepository) AddWithTx(ctx context.Context, tx pgx.Tx, card *domain.Card) error {
	return tx.QueryRow(ctx, `
		INSERT INTO cards (player_id, rarity, passive_coins_hour, boost_multiplier, energy_bonus)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, obtained_at`,
		card.PlayerID, card.Rarity, card.PassiveCoinsHour, card.BoostMultiplier, card.EnergyBonus,
	).Scan(&card.ID, &card.ObtainedAt)
}

// ListByPlayer returns the collection, newest first.
func (r *CardRepository) ListByPlayer(ctx context.Context, playerID int64) ([]domain.Card, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, player_id, rarity, passive_coins_hour, boost_multiplier, energy_bonus, obtained_at
		FROM cards
		WHERE player_id = $1
		ORDER BY id DESC`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Card
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.ID, &c.PlayerID, &c.Rarity, &c.PassiveCoinsHour,
			&c.BoostMultiplier, &c.EnergyBonus, &c.ObtainedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
