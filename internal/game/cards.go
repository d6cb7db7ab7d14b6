package game

import (
	"time"

	"quantum_clicker/internal/domain"
)

// PackCost is the coin price of one card pack.
const PackCost = 100

// CardBoostDuration is the window of the tap boost a drawn card grants.
const CardBoostDuration = time.Hour

// CardStats are the bonuses a card of a given rarity applies: a permanent
// passive income and max-energy increase, plus a time-limited tap boost.
type CardStats struct {
	PassiveCoinsHour int64   `json:"passive_coins_hour"`
	BoostMultiplier  float64 `json:"boost_multiplier"`
	EnergyBonus      int     `json:"energy_bonus"`
}

var cardStats = map[domain.CardRarity]CardStats{
	domain.RarityCommon:    {PassiveCoinsHour: 2, BoostMultiplier: 1.15, EnergyBonus: 8},
	domain.RarityRare:      {PassiveCoinsHour: 5, BoostMultiplier: 1.25, EnergyBonus: 15},
	domain.RarityEpic:      {PassiveCoinsHour: 12, BoostMultiplier: 1.5, EnergyBonus: 25},
	domain.RarityLegendary: {PassiveCoinsHour: 30, BoostMultiplier: 2.0, EnergyBonus: 60},
}

// CardStatsByRarity returns the stat block for a rarity.
func CardStatsByRarity(r domain.CardRarity) CardStats {
	return cardStats[r]
}

var rarityTable = []struct {
	rarity domain.CardRarity
	weight float64
}{
	{domain.RarityCommon, 0.50},
	{domain.RarityRare, 0.30},
	{domain.RarityEpic, 0.15},
	{domain.RarityLegendary, 0.05},
}

// RollRarity draws a rarity by cumulative weight from the injected source.
func RollRarity(rnd Rand) domain.CardRarity {
	roll := rnd.Float64()
	var cum float64
	for _, e := range rarityTable {
		cum += e.weight
		if roll <= cum {
			return e.rarity
		}
	}
	return domain.RarityCommon
}
