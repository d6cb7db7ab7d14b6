package domain

import "time"

// Player is the full economy state for one external identity.
type Player struct {
	ID        int64  `json:"id"`
	TgID      int64  `json:"tg_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`

	Coins int64 `json:"coins"`
	Hash  int64 `json:"hash"` // scarce mined currency

	Energy     int     `json:"energy"`
	MaxEnergy  int     `json:"max_energy"`
	RegenRate  float64 `json:"regen_rate"`  // energy units per regen tick
	RegenCarry float64 `json:"-"`           // fractional energy carried between ticks

	Level      int   `json:"level"`
	Experience int64 `json:"experience"`
	TapPower   int64 `json:"tap_power"`

	PassiveCoinsHour int64 `json:"passive_coins_hour"`
	PassiveHashHour  int64 `json:"passive_hash_hour"`

	PrestigeLevel  int   `json:"prestige_level"`
	PrestigePoints int64 `json:"prestige_points"`

	TotalTaps  int64 `json:"total_taps"`
	TotalMined int64 `json:"total_mined"`

	ReferralCode   string `json:"referral_code"`
	ReferredBy     *int64 `json:"referred_by,omitempty"`
	ReferralsCount int    `json:"referrals_count"`

	StreakDays    int        `json:"streak_days"`
	LastBonusDate *time.Time `json:"last_bonus_date,omitempty"`

	Banned      bool       `json:"banned"`
	BanReason   string     `json:"-"`
	FrozenUntil *time.Time `json:"frozen_until,omitempty"`
	Suspicion   int        `json:"-"` // persisted guard strike count, moderation signal only

	LastActive        time.Time `json:"last_active"`
	LastPassiveCredit time.Time `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
}

// Frozen reports whether the player is inside an unexpired freeze window.
func (p *Player) Frozen(now time.Time) bool {
	return p.FrozenUntil != nil && p.FrozenUntil.After(now)
}

// PlayerDefaults are applied on first contact.
const (
	DefaultEnergy    = 100
	DefaultMaxEnergy = 100
	DefaultRegenRate = 1.0
	DefaultTapPower  = 1
	DefaultLevel     = 1
)
