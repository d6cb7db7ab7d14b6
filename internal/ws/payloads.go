package ws

// Event is the server → client push envelope.
//
// Event types:
//   - balance_update:        coins / hash / energy / level after an action
//   - achievement_unlocked:  id, name, rewards
//   - withdrawal_completed:  ref
//   - withdrawal_failed:     ref (amount refunded)
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}
