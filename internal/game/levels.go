package game

// ExpThreshold is the experience needed to clear the given level.
func ExpThreshold(level int, factor int64) int64 {
	return int64(level) * factor
}

// ApplyExperience adds gained experience and resolves level-ups. One large
// credit may cross several thresholds; each crossing bumps the level by
// exactly one and carries the remainder forward.
func ApplyExperience(level int, exp, gained, factor int64) (newLevel int, newExp int64, levelsGained int) {
	newLevel = level
	newExp = exp + gained
	for newExp >= ExpThreshold(newLevel, factor) {
		newExp -= ExpThreshold(newLevel, factor)
		newLevel++
		levelsGained++
	}
	return newLevel, newExp, levelsGained
}

// TapExperience derives exp from coins earned. A zero divisor selects the
// flat +1 policy.
func TapExperience(earned, divisor int64) int64 {
	if divisor <= 0 {
		return 1
	}
	exp := earned / divisor
	if exp < 1 {
		return 1
	}
	return exp
}
