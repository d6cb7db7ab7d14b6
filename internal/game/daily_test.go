package game

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestNextStreak_FirstClaim(t *testing.T) {
	if s := NextStreak(nil, 0, date(2025, 6, 10)); s != 1 {
		t.Fatalf("expected streak 1, got %d", s)
	}
}

func TestNextStreak_Consecutive(t *testing.T) {
	last := date(2025, 6, 9)
	if s := NextStreak(&last, 4, date(2025, 6, 10)); s != 5 {
		t.Fatalf("expected streak 5, got %d", s)
	}
}

func TestNextStreak_MissedDayResets(t *testing.T) {
	last := date(2025, 6, 7)
	if s := NextStreak(&last, 10, date(2025, 6, 10)); s != 1 {
		t.Fatalf("expected streak reset to 1, got %d", s)
	}
}

func TestNextStreak_DriverZoneDoesNotResetStreak(t *testing.T) {
	// The same instant scanned by the driver into a non-UTC zone must
	// extend the streak exactly like its UTC form.
	lastUTC := time.Date(2025, 6, 8, 23, 30, 0, 0, time.UTC)
	lastLocal := lastUTC.In(time.FixedZone("UTC+14", 14*3600))
	now := time.Date(2025, 6, 9, 23, 0, 0, 0, time.UTC)

	if s := NextStreak(&lastUTC, 4, now); s != 5 {
		t.Fatalf("UTC form: got %d, want 5", s)
	}
	if s := NextStreak(&lastLocal, 4, now); s != 5 {
		t.Fatalf("driver-local form of the same instant: got %d, want 5", s)
	}
}

func TestDailyBonus(t *testing.T) {
	cases := []struct {
		streak int
		want   int64
	}{
		{1, 100},
		{2, 110},
		{3, 121},
		{31, 1586}, // capped at 30 days: floor(100 * 1.1^29)
		{50, 1586},
	}
	for _, c := range cases {
		if got := DailyBonus(100, c.streak, 1.1, 30); got != c.want {
			t.Errorf("DailyBonus(streak=%d) = %d, want %d", c.streak, got, c.want)
		}
	}
}

