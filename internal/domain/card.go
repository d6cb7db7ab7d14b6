package domain

import "time"

// CardRarity orders card tiers from common to legendary.
type CardRarity string

const (
	RarityCommon    CardRarity = "common"
	RarityRare      CardRarity = "rare"
	RarityEpic      CardRarity = "epic"
	RarityLegendary CardRarity = "legendary"
)

// Card is a collectible drawn from a pack. Its stat bonuses are applied to
// the player once, at draw time; the row remains as the collection record.
type Card struct {
	ID               int64      `json:"id"`
	PlayerID         int64      `json:"player_id"`
	Rarity           CardRarity `json:"rarity"`
	PassiveCoinsHour int64      `json:"passive_coins_hour"`
	BoostMultiplier  float64    `json:"boost_multiplier"`
	EnergyBonus      int        `json:"energy_bonus"`
	ObtainedAt       time.Time  `json:"obtained_at"`
}
