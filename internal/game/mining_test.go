package game

import (
	"math"
	"testing"
)

// fixedRand always returns the same roll.
type fixedRand struct{ v float64 }

func (f fixedRand) Float64() float64 { return f.v }

func TestMiningChance_CappedAtBase(t *testing.T) {
	// tiny difficulty, enormous hash rate: cap applies
	chance := MiningChance(1e9, 1, 1.0, 0.15, 0.25)
	if chance != 0.15 {
		t.Fatalf("expected base cap 0.15, got %f", chance)
	}
}

func TestMiningChance_EventCapped(t *testing.T) {
	chance := MiningChance(1e9, 1, 10.0, 0.15, 0.25)
	if chance != 0.25 {
		t.Fatalf("expected event cap 0.25, got %f", chance)
	}
}

func TestMiningChance_ZeroHashRate(t *testing.T) {
	if chance := MiningChance(0, 10, 1.0, 0.15, 0.25); chance != 0 {
		t.Fatalf("expected zero chance, got %f", chance)
	}
}

func TestMiningChance_DifficultyRisesWithLevel(t *testing.T) {
	low := MiningChance(100, 1, 1.0, 0.15, 0.25)
	high := MiningChance(100, 50, 1.0, 0.15, 0.25)
	if high >= low {
		t.Fatalf("chance should fall with level: level1=%f level50=%f", low, high)
	}
}

func TestMineAttempt_Deterministic(t *testing.T) {
	// with a roll of 0 any positive chance succeeds
	reward := MineAttempt(fixedRand{0}, 1000, 1, 1.0, 0.15, 0.25)
	if want := int64(math.Floor(1000.0 / 100)); reward != want {
		t.Fatalf("expected reward %d, got %d", want, reward)
	}

	// with a roll of 0.99 and a capped 15% chance the attempt fails
	if reward := MineAttempt(fixedRand{0.99}, 1000, 1, 1.0, 0.15, 0.25); reward != 0 {
		t.Fatalf("expected failed attempt, got %d", reward)
	}
}

func TestMineAttempt_NoRigs(t *testing.T) {
	if reward := MineAttempt(fixedRand{0}, 0, 1, 1.0, 0.15, 0.25); reward != 0 {
		t.Fatalf("expected 0 with no hash rate, got %d", reward)
	}
}
