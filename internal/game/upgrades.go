package game

import "quantum_clicker/internal/domain"

// Upgrade is one purchasable improvement. Apply mutates the locked player
// row; the engine debits the cost and applies the effect in one
// transaction, so the effect is never granted without the debit.
type Upgrade struct {
	ID        string `json:"id"`
	CostCoins int64  `json:"cost_coins"`
	CostHash  int64  `json:"cost_hash"`
	// RigEffect marks upgrades whose effect lives on the rigs table rather
	// than the player row.
	RigEffect bool               `json:"-"`
	Apply     func(p *domain.Player) `json:"-"`
}

var Upgrades = []Upgrade{
	{
		ID:        "tap_power",
		CostCoins: 100,
		Apply:     func(p *domain.Player) { p.TapPower++ },
	},
	{
		ID:        "max_energy",
		CostCoins: 200,
		Apply: func(p *domain.Player) {
			p.MaxEnergy += 10
			p.Energy += 10
		},
	},
	{
		ID:        "energy_regen",
		CostCoins: 300,
		Apply:     func(p *domain.Player) { p.RegenRate += 0.5 },
	},
	{
		ID:        "passive_coins",
		CostCoins: 1000,
		Apply:     func(p *domain.Player) { p.PassiveCoinsHour += 10 },
	},
	{
		ID:       "passive_hash",
		CostHash: 500,
		Apply:    func(p *domain.Player) { p.PassiveHashHour += 1 },
	},
	{
		ID:        "mining_efficiency",
		CostCoins: 500,
		RigEffect: true,
	},
}

// UpgradeByID returns the upgrade or nil for unknown ids.
func UpgradeByID(id string) *Upgrade {
	for i := range Upgrades {
		if Upgrades[i].ID == id {
			return &Upgrades[i]
		}
	}
	return nil
}

// EnergyRefill is the fixed buy-energy offer: cost in coins for an energy
// top-up capped at max energy.
const (
	EnergyRefillAmount = 50
	EnergyRefillCost   = 50
)
