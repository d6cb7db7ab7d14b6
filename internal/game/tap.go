package game

import "math"

// PrestigeMultiplier is the permanent earnings bonus: base^prestigeLevel,
// compounding per prestige run.
func PrestigeMultiplier(prestigeLevel int, base float64) float64 {
	if prestigeLevel <= 0 {
		return 1
	}
	return math.Pow(base, float64(prestigeLevel))
}

// TapEarnings is the coin reward for one tap: tap power scaled by the
// stacked boost multiplier and the prestige multiplier, floored.
func TapEarnings(tapPower int64, boostMult, prestigeMult float64) int64 {
	earned := int64(math.Floor(float64(tapPower) * boostMult * prestigeMult))
	if earned < 1 {
		return 1
	}
	return earned
}

// PrestigePoints granted for resetting at the given level.
func PrestigePoints(level int) int64 {
	return int64(level / 10)
}
