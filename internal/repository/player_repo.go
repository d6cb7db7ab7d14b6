package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"quantum_clicker/internal/domain"
	"quantum_clicker/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const playerColumns = `id, tg_id, username, first_name, coins, hash,
	energy, max_energy, regen_rate, regen_carry,
	level, experience, tap_power,
	passive_coins_hour, passive_hash_hour,
	prestige_level, prestige_points,
	total_taps, total_mined,
	referral_code, referred_by, referrals_count,
	streak_days, last_bonus_date,
	banned, ban_reason, frozen_until, suspicion,
	last_active, last_passive_credit, created_at`

// Mutation receives the locked player row and returns the ledger entries
// describing its balance changes. It runs inside the row transaction; the
// tx is exposed so callers can join dependent writes (withdrawal rows, rig
// updates) to the same commit.
type Mutation func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error)

type PlayerRepository struct {
	db     *pgxpool.Pool
	ledger *LedgerRepository
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db, ledger: NewLedgerRepository(db)}
}

// GenerateReferralCode returns a random 12-hex-char code.
func GenerateReferralCode() string {
	b := make([]byte, 6)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*domain.Player, error) {
	row := r.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	return scanPlayer(row)
}

func (r *PlayerRepository) GetByTgID(ctx context.Context, tgID int64) (*domain.Player, error) {
	row := r.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE tg_id = $1`, tgID)
	return scanPlayer(row)
}

func (r *PlayerRepository) GetByReferralCode(ctx context.Context, code string) (*domain.Player, error) {
	row := r.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE referral_code = $1`, code)
	return scanPlayer(row)
}

// CreateIfAbsent creates the player on first contact. A duplicate attempt
// for the same tg id is a no-op that returns the existing record.
func (r *PlayerRepository) CreateIfAbsent(ctx context.Context, tgID int64, username, firstName string) (*domain.Player, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO players (tg_id, username, first_name, energy, max_energy, regen_rate, tap_power, level, referral_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tg_id) DO NOTHING`,
		tgID, username, firstName,
		domain.DefaultEnergy, domain.DefaultMaxEnergy, domain.DefaultRegenRate,
		domain.DefaultTapPower, domain.DefaultLevel, GenerateReferralCode(),
	)
	if err != nil {
		return nil, err
	}
	return r.GetByTgID(ctx, tgID)
}

// ApplyMutation runs fn against the player row locked FOR UPDATE and writes
// back the new state plus ledger entries in one transaction. Two concurrent
// mutations on the same player serialize on the row lock, so neither can
// commit against stale state. Transient storage errors are retried with
// backoff; domain errors surface immediately.
func (r *PlayerRepository) ApplyMutation(ctx context.Context, id int64, fn Mutation) (*domain.Player, error) {
	var p *domain.Player
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		p, err = r.applyOnce(ctx, id, fn)
		if err == nil {
			return p, nil
		}
		if domain.KindOf(err) != "" || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Warn("player mutation retry", "player_id", id, "attempt", attempt+1, "error", err)
	}
	return nil, domain.ErrUnavailable("storage unavailable", err)
}

func (r *PlayerRepository) applyOnce(ctx context.Context, id int64, fn Mutation) (*domain.Player, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1 FOR UPDATE`, id)
	p, err := scanPlayer(row)
	if err != nil {
		return nil, err
	}

	entries, err := fn(tx, p)
	if err != nil {
		return nil, err
	}

	if err := writePlayer(ctx, tx, p); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].PlayerID = p.ID
		if err := r.ledger.CreateWithTx(ctx, tx, &entries[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyPairMutation locks two players in id order (deadlock-safe) and
// commits both new states plus their ledger entries atomically. Used for
// referral credits.
func (r *PlayerRepository) ApplyPairMutation(ctx context.Context, firstID, secondID int64, fn func(tx pgx.Tx, a, b *domain.Player) ([]domain.LedgerEntry, error)) error {
	if firstID == secondID {
		return domain.ErrInvalidInput("cannot pair a player with itself")
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.ErrUnavailable("storage unavailable", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lockFirst, lockSecond := firstID, secondID
	if lockFirst > lockSecond {
		lockFirst, lockSecond = lockSecond, lockFirst
	}

	byID := make(map[int64]*domain.Player, 2)
	for _, lockID := range []int64{lockFirst, lockSecond} {
		row := tx.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1 FOR UPDATE`, lockID)
		p, err := scanPlayer(row)
		if err != nil {
			return err
		}
		byID[lockID] = p
	}

	entries, err := fn(tx, byID[firstID], byID[secondID])
	if err != nil {
		return err
	}

	for _, p := range byID {
		if err := writePlayer(ctx, tx, p); err != nil {
			return err
		}
	}
	for i := range entries {
		if err := r.ledger.CreateWithTx(ctx, tx, &entries[i]); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// TopEntry is one leaderboard row.
type TopEntry struct {
	Rank     int    `json:"rank"`
	PlayerID int64  `json:"player_id"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	Prestige int    `json:"prestige"`
	Score    int64  `json:"score"`
}

// leaderboard metrics are a fixed whitelist; no dynamic column names.
var topColumns = map[string]string{
	"coins":    "coins",
	"hash":     "hash",
	"taps":     "total_taps",
	"level":    "level",
	"prestige": "prestige_level",
}

// ListTop returns the top players for a whitelisted metric, banned players
// excluded.
func (r *PlayerRepository) ListTop(ctx context.Context, metric string, limit int) ([]TopEntry, error) {
	col, ok := topColumns[metric]
	if !ok {
		return nil, domain.ErrInvalidInput("unknown leaderboard metric: " + metric)
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, username, level, prestige_level, `+col+`::bigint AS score
		FROM players
		WHERE NOT banned
		ORDER BY score DESC, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []TopEntry
	rank := 1
	for rows.Next() {
		var e TopEntry
		if err := rows.Scan(&e.PlayerID, &e.Username, &e.Level, &e.Prestige, &e.Score); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		res = append(res, e)
	}
	return res, rows.Err()
}

// RegenerateEnergy applies one energy tick to every eligible player in a
// single statement. Fractional regen rates accumulate in regen_carry and
// pay out as whole units. Row locks make the bulk update serialize with
// in-flight per-player transactions instead of racing them.
func (r *PlayerRepository) RegenerateEnergy(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE players
		SET energy = LEAST(max_energy, energy + FLOOR(regen_carry + regen_rate)::int),
		    regen_carry = CASE
		        WHEN energy + FLOOR(regen_carry + regen_rate)::int >= max_energy THEN 0
		        ELSE regen_carry + regen_rate - FLOOR(regen_carry + regen_rate)
		    END
		WHERE energy < max_energy
		  AND NOT banned
		  AND (frozen_until IS NULL OR frozen_until < now())`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CreditPassiveIncome credits per-hour income accrued since each player's
// last credit, capped at capHours of elapsed time, and appends the
// matching ledger entries in the same statement. Elapsed real time drives
// the amount, so missed ticks reconcile themselves.
func (r *PlayerRepository) CreditPassiveIncome(ctx context.Context, capHours float64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		WITH due AS (
			SELECT id,
			       FLOOR(passive_coins_hour * LEAST(EXTRACT(EPOCH FROM (now() - last_passive_credit)) / 3600.0, $1))::bigint AS coins_due,
			       FLOOR(passive_hash_hour  * LEAST(EXTRACT(EPOCH FROM (now() - last_passive_credit)) / 3600.0, $1))::bigint AS hash_due
			FROM players
			WHERE NOT banned
			  AND (frozen_until IS NULL OR frozen_until < now())
			  AND (passive_coins_hour > 0 OR passive_hash_hour > 0)
		),
		credited AS (
			UPDATE players p
			SET coins = p.coins + d.coins_due,
			    hash = p.hash + d.hash_due,
			    last_passive_credit = now()
			FROM due d
			WHERE p.id = d.id AND (d.coins_due > 0 OR d.hash_due > 0)
			RETURNING p.id, d.coins_due, d.hash_due
		)
		INSERT INTO ledger (player_id, entry_type, coins_delta, hash_delta, reason)
		SELECT id, 'passive_income', coins_due, hash_due, 'passive income tick' FROM credited`,
		capHours)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Stats are aggregate totals for moderation tooling.
type Stats struct {
	TotalPlayers int64 `json:"total_players"`
	TotalCoins   int64 `json:"total_coins"`
	TotalHash    int64 `json:"total_hash"`
	TotalTaps    int64 `json:"total_taps"`
	Banned       int64 `json:"banned"`
}

func (r *PlayerRepository) GetStats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(coins), 0),
		       COALESCE(SUM(hash), 0),
		       COALESCE(SUM(total_taps), 0),
		       COUNT(*) FILTER (WHERE banned)
		FROM players`).Scan(&s.TotalPlayers, &s.TotalCoins, &s.TotalHash, &s.TotalTaps, &s.Banned)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ActiveIDs lists ids of all non-banned players, for bulk moderation ops.
func (r *PlayerRepository) ActiveIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM players WHERE NOT banned ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TouchLastActive stamps activity outside a mutation (login, view).
func (r *PlayerRepository) TouchLastActive(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE players SET last_active = now() WHERE id = $1`, id)
	return err
}

// BumpSuspicion persists a guard strike count for moderation visibility.
func (r *PlayerRepository) BumpSuspicion(ctx context.Context, id int64, strikes int) error {
	_, err := r.db.Exec(ctx, `UPDATE players SET suspicion = GREATEST(suspicion, $2) WHERE id = $1`, id, strikes)
	return err
}

func writePlayer(ctx context.Context, tx pgx.Tx, p *domain.Player) error {
	_, err := tx.Exec(ctx, `
		UPDATE players SET
			username = $2, first_name = $3, coins = $4, hash = $5,
			energy = $6, max_energy = $7, regen_rate = $8, regen_carry = $9,
			level = $10, experience = $11, tap_power = $12,
			passive_coins_hour = $13, passive_hash_hour = $14,
			prestige_level = $15, prestige_points = $16,
			total_taps = $17, total_mined = $18,
			referred_by = $19, referrals_count = $20,
			streak_days = $21, last_bonus_date = $22,
			banned = $23, ban_reason = $24, frozen_until = $25, suspicion = $26,
			last_active = $27, last_passive_credit = $28
		WHERE id = $1`,
		p.ID, p.Username, p.FirstName, p.Coins, p.Hash,
		p.Energy, p.MaxEnergy, p.RegenRate, p.RegenCarry,
		p.Level, p.Experience, p.TapPower,
		p.PassiveCoinsHour, p.PassiveHashHour,
		p.PrestigeLevel, p.PrestigePoints,
		p.TotalTaps, p.TotalMined,
		p.ReferredBy, p.ReferralsCount,
		p.StreakDays, p.LastBonusDate,
		p.Banned, p.BanReason, p.FrozenUntil, p.Suspicion,
		p.LastActive, p.LastPassiveCredit,
	)
	return err
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(
		&p.ID, &p.TgID, &p.Username, &p.FirstName, &p.Coins, &p.Hash,
		&p.Energy, &p.MaxEnergy, &p.RegenRate, &p.RegenCarry,
		&p.Level, &p.Experience, &p.TapPower,
		&p.PassiveCoinsHour, &p.PassiveHashHour,
		&p.PrestigeLevel, &p.PrestigePoints,
		&p.TotalTaps, &p.TotalMined,
		&p.ReferralCode, &p.ReferredBy, &p.ReferralsCount,
		&p.StreakDays, &p.LastBonusDate,
		&p.Banned, &p.BanReason, &p.FrozenUntil, &p.Suspicion,
		&p.LastActive, &p.LastPassiveCredit, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound("player not found")
		}
		return nil, err
	}
	return &p, nil
}
