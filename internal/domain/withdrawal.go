package domain

import "time"

type WithdrawalStatus string

const (
	WithdrawalPending    WithdrawalStatus = "pending"
	WithdrawalProcessing WithdrawalStatus = "processing"
	WithdrawalCompleted  WithdrawalStatus = "completed"
	WithdrawalFailed     WithdrawalStatus = "failed"
	WithdrawalCancelled  WithdrawalStatus = "cancelled"
)

// WithdrawalRequest is created by the economy engine with the hash amount
// already debited. Status transitions are driven by the settlement
// collaborator, never by the player.
type WithdrawalRequest struct {
	ID          int64            `json:"id"`
	Ref         string           `json:"ref"` // public uuid reference
	PlayerID    int64            `json:"player_id"`
	Amount      int64            `json:"amount"` // hash
	Address     string           `json:"address"`
	Status      WithdrawalStatus `json:"status"`
	TxHash      string           `json:"tx_hash,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty"`
}
