package game

import (
	"testing"
	"time"
)

func TestOfflineIncome_CapsElapsedTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	capWindow := 4 * time.Hour

	short := OfflineIncome(now.Add(-2*time.Hour), now, now, capWindow, 10, 1, 0, 1.0, 1.0)
	capped := OfflineIncome(now.Add(-24*time.Hour), now, now, capWindow, 10, 1, 0, 1.0, 1.0)
	atCap := OfflineIncome(now.Add(-capWindow), now, now, capWindow, 10, 1, 0, 1.0, 1.0)

	if short != 20 {
		t.Fatalf("2h at 10/h: got %d", short)
	}
	if capped != atCap {
		t.Fatalf("24h away must earn the same as the cap: %d vs %d", capped, atCap)
	}
}

func TestOfflineIncome_NonPositiveElapsed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if got := OfflineIncome(now, now, now, time.Hour, 10, 1, 0, 1.0, 1.0); got != 0 {
		t.Fatalf("zero elapsed should earn nothing, got %d", got)
	}
	if got := OfflineIncome(now.Add(time.Minute), now, now, time.Hour, 10, 1, 0, 1.0, 1.0); got != 0 {
		t.Fatalf("clock skew should earn nothing, got %d", got)
	}
}

func TestOfflineIncome_PassiveSpanIsSeparate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Away for 2h, but the passive tick already credited up to 10 minutes
	// ago: only the remaining 10 minutes of passive rate may pay again.
	away := now.Add(-2 * time.Hour)
	credited := now.Add(-10 * time.Minute)
	got := OfflineIncome(away, credited, now, 4*time.Hour, 10, 1, 60, 1.0, 1.0)
	if got != 30 { // base 10*2h + passive 60*(1/6)h
		t.Fatalf("expected 30, got %d", got)
	}

	// Fully credited passive span pays the base term only.
	if got := OfflineIncome(away, now, now, 4*time.Hour, 10, 1, 60, 1.0, 1.0); got != 20 {
		t.Fatalf("credited-up-to-now passive must not pay again, got %d", got)
	}
}

func TestOfflineIncome_BoostAndPrestigeScale(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// 1h: base 10*1 + passive 60, boosted x2
	got := OfflineIncome(now.Add(-time.Hour), now.Add(-time.Hour), now, 4*time.Hour, 10, 1, 60, 2.0, 1.0)
	if got != 140 {
		t.Fatalf("expected 140, got %d", got)
	}
}

func TestUpgradeByID(t *testing.T) {
	if u := UpgradeByID("tap_power"); u == nil || u.CostCoins != 100 {
		t.Fatalf("tap_power lookup failed: %+v", u)
	}
	if u := UpgradeByID("nonexistent"); u != nil {
		t.Fatalf("unknown id should return nil")
	}
}
