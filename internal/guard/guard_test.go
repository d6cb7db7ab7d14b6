package guard

import (
	"errors"
	"testing"
	"time"

	"quantum_clicker/internal/domain"
)

func testConfig() Config {
	return Config{
		TapsPerSecond:      8,
		TapsPerMinute:      200,
		MinesPerSecond:     3,
		PurchasesPerMinute: 20,
		MinInterval:        50 * time.Millisecond,
		SuspicionThreshold: 5,
		IdleTTL:            10 * time.Minute,
		MaxTracked:         1000,
	}
}

func TestCheck_AllowsSpacedTaps(t *testing.T) {
	g := New(testConfig())
	now := time.Unix(1000, 0)
	for i := 0; i < 8; i++ {
		if err := g.Check(1, CategoryTap, now.Add(time.Duration(i)*200*time.Millisecond)); err != nil {
			t.Fatalf("tap %d unexpectedly denied: %v", i, err)
		}
	}
}

func TestCheck_MinIntervalBurst(t *testing.T) {
	g := New(testConfig())
	now := time.Unix(1000, 0)
	if err := g.Check(1, CategoryTap, now); err != nil {
		t.Fatalf("first tap denied: %v", err)
	}
	err := g.Check(1, CategoryTap, now.Add(10*time.Millisecond))
	if !errors.Is(err, domain.ErrRateLimited("")) {
		t.Fatalf("expected rate-limited, got %v", err)
	}
}

func TestCheck_PerSecondCeiling(t *testing.T) {
	g := New(testConfig())
	now := time.Unix(1000, 0)
	// 8 taps inside one second, spaced above the min interval
	for i := 0; i < 8; i++ {
		if err := g.Check(1, CategoryTap, now.Add(time.Duration(i)*100*time.Millisecond)); err != nil {
			t.Fatalf("tap %d denied: %v", i, err)
		}
	}
	if err := g.Check(1, CategoryTap, now.Add(850*time.Millisecond)); err == nil {
		t.Fatal("ninth tap within one second should be denied")
	}
}

func TestCheck_CategoriesIndependent(t *testing.T) {
	g := New(testConfig())
	now := time.Unix(1000, 0)
	if err := g.Check(1, CategoryTap, now); err != nil {
		t.Fatalf("tap denied: %v", err)
	}
	// a mine right after a tap is fine: windows are per category
	if err := g.Check(1, CategoryMine, now.Add(time.Millisecond)); err != nil {
		t.Fatalf("mine denied: %v", err)
	}
}

func TestCheck_PlayersIndependent(t *testing.T) {
	g := New(testConfig())
	now := time.Unix(1000, 0)
	if err := g.Check(1, CategoryTap, now); err != nil {
		t.Fatalf("player 1 denied: %v", err)
	}
	if err := g.Check(2, CategoryTap, now.Add(time.Millisecond)); err != nil {
		t.Fatalf("player 2 denied: %v", err)
	}
}

func TestSuspicion_ThresholdFlagsPlayer(t *testing.T) {
	g := New(testConfig())
	var notified int64
	g.OnSuspicious = func(id int64, _ int) { notified = id }

	now := time.Unix(1000, 0)
	_ = g.Check(7, CategoryTap, now)
	// five rejections in a row cross the threshold
	for i := 0; i < 5; i++ {
		_ = g.Check(7, CategoryTap, now.Add(time.Duration(i+1)*time.Millisecond))
	}
	if !g.Suspicious(7) {
		t.Fatal("player should be flagged suspicious")
	}
	if notified != 7 {
		t.Fatalf("expected suspicion callback for player 7, got %d", notified)
	}
	// flagged players are reported, not blocked outright
	if err := g.Check(7, CategoryTap, now.Add(time.Minute)); err != nil {
		t.Fatalf("well-spaced tap after flagging should pass: %v", err)
	}
}

func TestEvictIdle_KeepsSuspicious(t *testing.T) {
	g := New(testConfig())
	now := time.Unix(1000, 0)
	_ = g.Check(1, CategoryTap, now)
	_ = g.Check(2, CategoryTap, now)
	for i := 0; i < 6; i++ {
		_ = g.Check(2, CategoryTap, now.Add(time.Duration(i+1)*time.Millisecond))
	}

	g.evictIdle(now.Add(time.Hour))

	if g.Suspicious(1) {
		t.Fatal("player 1 was never suspicious")
	}
	if !g.Suspicious(2) {
		t.Fatal("suspicious player must survive idle eviction")
	}
	g.mu.Lock()
	_, stillTracked := g.players[1]
	g.mu.Unlock()
	if stillTracked {
		t.Fatal("idle player 1 should have been evicted")
	}
}

func TestCapacityBound(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTracked = 3
	g := New(cfg)
	base := time.Unix(1000, 0)
	for i := int64(1); i <= 4; i++ {
		_ = g.Check(i, CategoryTap, base.Add(time.Duration(i)*time.Second))
	}
	g.mu.Lock()
	n := len(g.players)
	_, oldestKept := g.players[1]
	g.mu.Unlock()
	if n > 3 {
		t.Fatalf("map grew past capacity: %d", n)
	}
	if oldestKept {
		t.Fatal("oldest idle entry should have been evicted first")
	}
}
