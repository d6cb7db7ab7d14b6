package game

import "math"

const difficultyBase = 1.15

// Difficulty rises geometrically with player level.
func Difficulty(level int) float64 {
	return math.Pow(difficultyBase, float64(level))
}

// MiningChance is the success probability of one attempt. The base chance
// is capped at chanceCap; event boosts raise it up to the hard eventCap.
func MiningChance(hashRate float64, level int, eventMult, chanceCap, eventCap float64) float64 {
	if hashRate <= 0 {
		return 0
	}
	chance := hashRate / (Difficulty(level) * 1000)
	if chance > chanceCap {
		chance = chanceCap
	}
	chance *= eventMult
	if chance > eventCap {
		chance = eventCap
	}
	return chance
}

// MiningReward is the hash credited on a successful attempt.
func MiningReward(hashRate, eventMult float64) int64 {
	return int64(math.Floor(hashRate / 100 * eventMult))
}

// Rand abstracts the random source so mining outcomes are reproducible in
// tests.
type Rand interface {
	Float64() float64
}

// MineAttempt rolls one attempt and returns the hash mined (0 on failure).
func MineAttempt(rnd Rand, hashRate float64, level int, eventMult, chanceCap, eventCap float64) int64 {
	chance := MiningChance(hashRate, level, eventMult, chanceCap, eventCap)
	if chance <= 0 || rnd.Float64() >= chance {
		return 0
	}
	return MiningReward(hashRate, eventMult)
}
