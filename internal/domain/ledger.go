package domain

import "time"

// EntryType tags a ledger entry with the action that produced it.
type EntryType string

const (
	EntryTap         EntryType = "tap"
	EntryMine        EntryType = "mine"
	EntryPurchase    EntryType = "purchase"
	EntryPack        EntryType = "card_pack"
	EntryBonus       EntryType = "bonus"
	EntryWithdrawal  EntryType = "withdrawal"
	EntryReferral    EntryType = "referral_credit"
	EntryAdmin       EntryType = "admin_adjustment"
	EntryPassive     EntryType = "passive_income"
	EntryOffline     EntryType = "offline_income"
	EntryAchievement EntryType = "achievement"
	EntryPrestige    EntryType = "prestige"
)

// LedgerEntry is the immutable audit record of one balance-affecting
// mutation. Entries are append-only and never edited.
type LedgerEntry struct {
	ID         int64     `json:"id"`
	PlayerID   int64     `json:"player_id"`
	Type       EntryType `json:"type"`
	CoinsDelta int64     `json:"coins_delta"`
	HashDelta  int64     `json:"hash_delta"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
