package game

import (
	"math"
	"time"
)

// OfflineIncome is the coin income accrued while away: a base rate per
// hour per point of tap power since last activity, plus the per-hour
// passive rate since it was last credited. The spans are separate: the
// passive-income tick advances lastPassiveCredit on its own and must
// never pay the same hours twice. Both spans are capped to bound
// offline-income abuse. The caller advances both stamps on claim.
func OfflineIncome(lastActive, lastPassiveCredit, now time.Time, cap time.Duration, baseRate float64, tapPower, passiveCoinsHour int64, boostMult, prestigeMult float64) int64 {
	base := baseRate * cappedHours(lastActive, now, cap) * float64(tapPower)
	passive := float64(passiveCoinsHour) * cappedHours(lastPassiveCredit, now, cap)
	return int64(math.Floor((base + passive) * boostMult * prestigeMult))
}

func cappedHours(since, now time.Time, cap time.Duration) float64 {
	elapsed := now.Sub(since)
	if elapsed <= 0 {
		return 0
	}
	if elapsed > cap {
		elapsed = cap
	}
	return elapsed.Hours()
}
