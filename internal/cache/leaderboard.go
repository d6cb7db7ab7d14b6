package cache

import (
	"context"
	"strconv"
	"time"

	"quantum_clicker/internal/logger"
	"quantum_clicker/internal/repository"

	"github.com/redis/go-redis/v9"
)

// Leaderboard serves top-N queries from redis sorted sets with a Postgres
// fallback. The sets are rebuilt from Postgres on a timer, so redis holds
// a recent snapshot rather than the source of truth.
type Leaderboard struct {
	cache   *Client // nil means fallback-only
	players *repository.PlayerRepository

	stop chan struct{}
}

// Metrics lists the supported leaderboard dimensions.
var Metrics = []string{"coins", "hash", "taps", "level", "prestige"}

func NewLeaderboard(cache *Client, players *repository.PlayerRepository) *Leaderboard {
	return &Leaderboard{cache: cache, players: players, stop: make(chan struct{})}
}

func key(metric string) string { return "leaderboard:" + metric }

// Top returns the leaderboard for a metric. Redis misses or errors fall
// through to Postgres.
func (l *Leaderboard) Top(ctx context.Context, metric string, limit int) ([]repository.TopEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if l.cache == nil {
		return l.players.ListTop(ctx, metric, limit)
	}

	zs, err := l.cache.ZRevRangeWithScores(ctx, key(metric), 0, int64(limit-1)).Result()
	if err != nil || len(zs) == 0 {
		return l.players.ListTop(ctx, metric, limit)
	}

	res := make([]repository.TopEntry, 0, len(zs))
	for i, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		res = append(res, repository.TopEntry{
			Rank:     i + 1,
			PlayerID: id,
			Score:    int64(z.Score),
		})
	}
	// names come from pg; a stale snapshot without them is still useful,
	// so enrich best-effort
	l.enrich(ctx, res)
	return res, nil
}

func (l *Leaderboard) enrich(ctx context.Context, entries []repository.TopEntry) {
	for i := range entries {
		p, err := l.players.GetByID(ctx, entries[i].PlayerID)
		if err != nil {
			continue
		}
		entries[i].Username = p.Username
		entries[i].Level = p.Level
		entries[i].Prestige = p.PrestigeLevel
	}
}

// StartRefresh rebuilds the sorted sets from Postgres on the interval.
func (l *Leaderboard) StartRefresh(interval time.Duration) {
	if l.cache == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-l.stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				l.refresh(ctx)
				cancel()
			}
		}
	}()
}

func (l *Leaderboard) StopRefresh() {
	close(l.stop)
}

func (l *Leaderboard) refresh(ctx context.Context) {
	for _, metric := range Metrics {
		top, err := l.players.ListTop(ctx, metric, 100)
		if err != nil {
			logger.Warn("leaderboard refresh failed", "metric", metric, "error", err)
			continue
		}
		pipe := l.cache.Pipeline()
		pipe.Del(ctx, key(metric))
		for _, e := range top {
			pipe.ZAdd(ctx, key(metric), redis.Z{Score: float64(e.Score), Member: strconv.FormatInt(e.PlayerID, 10)})
		}
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn("leaderboard pipeline failed", "metric", metric, "error", err)
		}
	}
}
