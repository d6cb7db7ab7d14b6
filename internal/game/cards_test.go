package game

import (
	"testing"

	"quantum_clicker/internal/domain"
)

func TestRollRarity_WeightBoundaries(t *testing.T) {
	cases := []struct {
		roll float64
		want domain.CardRarity
	}{
		{0.0, domain.RarityCommon},
		{0.50, domain.RarityCommon},
		{0.51, domain.RarityRare},
		{0.80, domain.RarityRare},
		{0.81, domain.RarityEpic},
		{0.95, domain.RarityEpic},
		{0.96, domain.RarityLegendary},
		{0.999, domain.RarityLegendary},
	}
	for _, c := range cases {
		if got := RollRarity(fixedRoll(c.roll)); got != c.want {
			t.Errorf("roll %.3f: got %s, want %s", c.roll, got, c.want)
		}
	}
}

func TestCardStats_GrowWithRarity(t *testing.T) {
	order := []domain.CardRarity{
		domain.RarityCommon, domain.RarityRare, domain.RarityEpic, domain.RarityLegendary,
	}
	prev := CardStatsByRarity(order[0])
	for _, r := range order[1:] {
		cur := CardStatsByRarity(r)
		if cur.PassiveCoinsHour <= prev.PassiveCoinsHour ||
			cur.BoostMultiplier <= prev.BoostMultiplier ||
			cur.EnergyBonus <= prev.EnergyBonus {
			t.Fatalf("%s stats do not exceed the previous tier: %+v vs %+v", r, cur, prev)
		}
		prev = cur
	}
}

type fixedRoll float64

func (f fixedRoll) Float64() float64 { return float64(f) }
