package guard

import (
	"sync"
	"time"

	"quantum_clicker/internal/domain"
)

// Category is the action class tracked by the guard.
type Category string

const (
	CategoryTap      Category = "tap"
	CategoryMine     Category = "mine"
	CategoryPurchase Category = "purchase"
)

// Config holds the guard policy. Values come from configuration, never
// hardcoded in the checks.
type Config struct {
	TapsPerSecond      int
	TapsPerMinute      int
	MinesPerSecond     int
	PurchasesPerMinute int
	MinInterval        time.Duration
	SuspicionThreshold int
	IdleTTL            time.Duration
	MaxTracked         int
}

type record struct {
	windows    map[Category][]time.Time
	lastAction time.Time
	suspicion  int
	suspicious bool
}

// Guard keeps a bounded in-memory sliding window of recent action
// timestamps per player. Checks never touch storage; the gate stays cheap.
type Guard struct {
	mu      sync.Mutex
	players map[int64]*record
	cfg     Config

	// OnSuspicious is called (outside economy flow, best effort) when a
	// player crosses the suspicion threshold for the first time.
	OnSuspicious func(playerID int64, strikes int)
}

func New(cfg Config) *Guard {
	return &Guard{
		players: make(map[int64]*record),
		cfg:     cfg,
	}
}

// Check classifies one action at the instant `now`. All window math uses
// this single timestamp; it is never recomputed mid-check.
func (g *Guard) Check(playerID int64, cat Category, now time.Time) error {
	g.mu.Lock()

	rec, ok := g.players[playerID]
	if !ok {
		if len(g.players) >= g.cfg.MaxTracked {
			g.evictOldestLocked()
		}
		rec = &record{windows: make(map[Category][]time.Time)}
		g.players[playerID] = rec
	}

	window := trim(rec.windows[cat], now.Add(-time.Minute))

	denied := ""
	if n := len(window); n > 0 {
		if now.Sub(window[n-1]) < g.cfg.MinInterval {
			denied = "actions too close together"
		}
	}
	if denied == "" {
		perSecond, perMinute := g.limitsFor(cat)
		if perSecond > 0 && countSince(window, now.Add(-time.Second)) >= perSecond {
			denied = "per-second ceiling exceeded"
		} else if perMinute > 0 && len(window) >= perMinute {
			denied = "per-minute ceiling exceeded"
		}
	}

	if denied != "" {
		rec.suspicion++
		rec.windows[cat] = window
		rec.lastAction = now
		crossed := !rec.suspicious && rec.suspicion >= g.cfg.SuspicionThreshold
		if crossed {
			rec.suspicious = true
		}
		strikes := rec.suspicion
		cb := g.OnSuspicious
		g.mu.Unlock()
		if crossed && cb != nil {
			cb(playerID, strikes)
		}
		return domain.ErrRateLimited(denied)
	}

	rec.windows[cat] = append(window, now)
	rec.lastAction = now
	g.mu.Unlock()
	return nil
}

// Suspicious reports whether the player has crossed the strike threshold.
// It flags, it does not block.
func (g *Guard) Suspicious(playerID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	rec, ok := g.players[playerID]
	return ok && rec.suspicious
}

// SuspiciousPlayers returns the flagged ids for moderation tooling.
func (g *Guard) SuspiciousPlayers() []int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	var ids []int64
	for id, rec := range g.players {
		if rec.suspicious {
			ids = append(ids, id)
		}
	}
	return ids
}

// Reset drops all guard state for a player (admin unban path).
func (g *Guard) Reset(playerID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.players, playerID)
}

// StartEviction runs the TTL janitor until stop is closed.
func (g *Guard) StartEviction(stop <-chan struct{}) {
	interval := g.cfg.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				g.evictIdle(time.Now())
			case <-stop:
				return
			}
		}
	}()
}

func (g *Guard) evictIdle(now time.Time) {
	cutoff := now.Add(-g.cfg.IdleTTL)
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, rec := range g.players {
		// suspicious players stay tracked until explicitly reset
		if !rec.suspicious && rec.lastAction.Before(cutoff) {
			delete(g.players, id)
		}
	}
}

// evictOldestLocked frees one slot when the map hits its capacity bound.
func (g *Guard) evictOldestLocked() {
	var oldestID int64
	var oldest time.Time
	first := true
	for id, rec := range g.players {
		if rec.suspicious {
			continue
		}
		if first || rec.lastAction.Before(oldest) {
			oldestID, oldest = id, rec.lastAction
			first = false
		}
	}
	if !first {
		delete(g.players, oldestID)
	}
}

func (g *Guard) limitsFor(cat Category) (perSecond, perMinute int) {
	switch cat {
	case CategoryTap:
		return g.cfg.TapsPerSecond, g.cfg.TapsPerMinute
	case CategoryMine:
		return g.cfg.MinesPerSecond, 0
	case CategoryPurchase:
		return 0, g.cfg.PurchasesPerMinute
	}
	return 0, 0
}

func trim(window []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(window) && !window[i].After(cutoff) {
		i++
	}
	return window[i:]
}

func countSince(window []time.Time, cutoff time.Time) int {
	n := 0
	for i := len(window) - 1; i >= 0; i-- {
		if window[i].After(cutoff) {
			n++
		} else {
			break
		}
	}
	return n
}
