package game

import (
	"math"
	"time"
)

// SameDay compares two instants by server-local calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NextStreak computes the streak after a claim at `now`. A claim on the day
// following the last claim extends the streak; any gap resets it to 1.
// Both instants are normalized to UTC before the calendar comparison, so
// the result is the same whatever zone the driver scanned the stamp into.
// The caller is responsible for rejecting same-day claims.
func NextStreak(lastClaim *time.Time, prevStreak int, now time.Time) int {
	if lastClaim == nil {
		return 1
	}
	yesterday := now.UTC().AddDate(0, 0, -1)
	if SameDay(lastClaim.UTC(), yesterday) {
		return prevStreak + 1
	}
	return 1
}

// DailyBonus grows with the streak up to a capped multiplier:
// base * mult^min(streak-1, maxDays-1), floored.
func DailyBonus(base int64, streak int, mult float64, maxDays int) int64 {
	exp := streak - 1
	if exp > maxDays-1 {
		exp = maxDays - 1
	}
	if exp < 0 {
		exp = 0
	}
	return int64(math.Floor(float64(base) * math.Pow(mult, float64(exp))))
}
