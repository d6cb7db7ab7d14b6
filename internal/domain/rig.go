package domain

import "time"

// MiningRig converts owned capacity into hash on successful mine attempts.
type MiningRig struct {
	ID          int64     `json:"id"`
	PlayerID    int64     `json:"player_id"`
	RigType     string    `json:"rig_type"`
	HashRate    int64     `json:"hash_rate"`
	Efficiency  float64   `json:"efficiency"`
	Active      bool      `json:"active"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// RigSpec is a purchasable rig tier.
type RigSpec struct {
	Type       string  `json:"type"`
	Cost       int64   `json:"cost"` // coins
	HashRate   int64   `json:"hash_rate"`
	Efficiency float64 `json:"efficiency"`
}

// RigCatalog lists the purchasable tiers, cheapest first.
var RigCatalog = []RigSpec{
	{Type: "basic", Cost: 500, HashRate: 50, Efficiency: 0.80},
	{Type: "advanced", Cost: 2000, HashRate: 200, Efficiency: 0.85},
	{Type: "quantum", Cost: 10000, HashRate: 1000, Efficiency: 0.90},
	{Type: "nexus", Cost: 50000, HashRate: 5000, Efficiency: 0.95},
	{Type: "infinity", Cost: 250000, HashRate: 25000, Efficiency: 0.98},
}

// RigSpecByType returns the spec for a tier, or nil for unknown types.
func RigSpecByType(t string) *RigSpec {
	for i := range RigCatalog {
		if RigCatalog[i].Type == t {
			return &RigCatalog[i]
		}
	}
	return nil
}

// EffectiveHashRate is the aggregate rate across active rigs.
func EffectiveHashRate(rigs []MiningRig) float64 {
	var total float64
	for _, r := range rigs {
		if r.Active {
			total += float64(r.HashRate) * r.Efficiency
		}
	}
	return total
}
