package domain

import "time"

// AchievementCondition qualifies when the matching counter reaches the
// threshold. Exactly one field is non-zero per achievement.
type AchievementCondition struct {
	Taps      int64
	Mined     int64
	Level     int
	Coins     int64
	Hash      int64
	Prestige  int
	Referrals int
	MaxEnergy int
	Streak    int
}

type Achievement struct {
	ID          string
	Name        string
	RewardCoins int64
	RewardHash  int64
	Condition   AchievementCondition
}

// Qualifies checks the condition against the player's current counters.
func (a Achievement) Qualifies(p *Player) bool {
	c := a.Condition
	switch {
	case c.Taps > 0:
		return p.TotalTaps >= c.Taps
	case c.Mined > 0:
		return p.TotalMined >= c.Mined
	case c.Level > 0:
		return p.Level >= c.Level
	case c.Coins > 0:
		return p.Coins >= c.Coins
	case c.Hash > 0:
		return p.Hash >= c.Hash
	case c.Prestige > 0:
		return p.PrestigeLevel >= c.Prestige
	case c.Referrals > 0:
		return p.ReferralsCount >= c.Referrals
	case c.MaxEnergy > 0:
		return p.MaxEnergy >= c.MaxEnergy
	case c.Streak > 0:
		return p.StreakDays >= c.Streak
	}
	return false
}

// AchievementCatalog is the fixed unlock table. Order matters only for
// presentation.
var AchievementCatalog = []Achievement{
	{ID: "first_tap", Name: "First Tap", RewardCoins: 10, Condition: AchievementCondition{Taps: 1}},
	{ID: "hundred_taps", Name: "Hundred Taps", RewardCoins: 100, Condition: AchievementCondition{Taps: 100}},
	{ID: "thousand_taps", Name: "Thousand Taps", RewardCoins: 1000, Condition: AchievementCondition{Taps: 1000}},
	{ID: "ten_thousand_taps", Name: "Ten Thousand Taps", RewardCoins: 10000, RewardHash: 1000, Condition: AchievementCondition{Taps: 10000}},
	{ID: "first_mine", Name: "First Mine", RewardCoins: 50, Condition: AchievementCondition{Mined: 1}},
	{ID: "first_referral", Name: "First Referral", RewardCoins: 500, Condition: AchievementCondition{Referrals: 1}},
	{ID: "level_10", Name: "Level 10", RewardCoins: 1000, Condition: AchievementCondition{Level: 10}},
	{ID: "level_50", Name: "Level 50", RewardCoins: 5000, Condition: AchievementCondition{Level: 50}},
	{ID: "level_100", Name: "Level 100", RewardCoins: 10000, RewardHash: 5000, Condition: AchievementCondition{Level: 100}},
	{ID: "millionaire", Name: "Millionaire", RewardCoins: 10000, Condition: AchievementCondition{Coins: 1_000_000}},
	{ID: "hash_master", Name: "Hash Master", RewardCoins: 50000, RewardHash: 10000, Condition: AchievementCondition{Hash: 100_000}},
	{ID: "prestige_master", Name: "Prestige Master", RewardCoins: 100000, RewardHash: 50000, Condition: AchievementCondition{Prestige: 10}},
	{ID: "streak_king", Name: "Streak King", RewardCoins: 30000, Condition: AchievementCondition{Streak: 30}},
	{ID: "energy_saver", Name: "Energy Saver", RewardCoins: 15000, Condition: AchievementCondition{MaxEnergy: 1000}},
}

// UnlockedAchievement is one row of the per-player unlock table.
type UnlockedAchievement struct {
	PlayerID      int64     `json:"player_id"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
