package domain

import "time"

// BoostCategory selects which earnings a boost multiplies.
type BoostCategory string

const (
	BoostTap     BoostCategory = "tap"
	BoostMine    BoostCategory = "mine"
	BoostOffline BoostCategory = "offline"
)

// Boost is a time-limited multiplicative earnings modifier.
type Boost struct {
	ID         int64         `json:"id"`
	PlayerID   int64         `json:"player_id"`
	Category   BoostCategory `json:"category"`
	Multiplier float64       `json:"multiplier"`
	ExpiresAt  time.Time     `json:"expires_at"`
}

// StackedMultiplier multiplies all boosts of a category that are unexpired
// at the single instant `now`, capped at ceiling. Expiry is checked against
// one timestamp so simultaneous boosts see a consistent cutoff.
func StackedMultiplier(boosts []Boost, cat BoostCategory, now time.Time, ceiling float64) float64 {
	mult := 1.0
	for _, b := range boosts {
		if b.Category == cat && b.ExpiresAt.After(now) {
			mult *= b.Multiplier
		}
	}
	if ceiling > 0 && mult > ceiling {
		return ceiling
	}
	return mult
}
