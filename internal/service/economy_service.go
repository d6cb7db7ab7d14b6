package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"quantum_clicker/internal/config"
	"quantum_clicker/internal/domain"
	"quantum_clicker/internal/game"
	"quantum_clicker/internal/guard"
	"quantum_clicker/internal/logger"
	"quantum_clicker/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clicker_actions_total",
		Help: "Economy actions processed, by action and outcome.",
	}, []string{"action", "outcome"})
	coinsEarnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clicker_coins_earned_total",
		Help: "Coins credited by player actions.",
	})
)

// Notifier pushes events to a connected player. Delivery is best effort.
type Notifier interface {
	Notify(playerID int64, event string, payload any)
}

// AddressValidator checks withdrawal destination addresses.
type AddressValidator interface {
	Validate(addr string) error
}

// EconomyService is the single entry point for every balance-affecting
// player action. Each operation is one atomic mutation against the player
// row: all-or-nothing, with its ledger entries in the same commit.
type EconomyService struct {
	players      *repository.PlayerRepository
	rigs         *repository.RigRepository
	boosts       *repository.BoostRepository
	cards        *repository.CardRepository
	withdrawals  *repository.WithdrawalRepository
	ledger       *repository.LedgerRepository
	guard        *guard.Guard
	achievements *AchievementService
	notifier     Notifier
	addrCheck    AddressValidator
	eco          config.EconomyConfig

	// injectable for tests
	now func() time.Time
	rnd game.Rand

	mu        sync.RWMutex
	eventMult float64 // global mining event multiplier, admin-controlled
}

func NewEconomyService(
	players *repository.PlayerRepository,
	rigs *repository.RigRepository,
	boosts *repository.BoostRepository,
	cards *repository.CardRepository,
	withdrawals *repository.WithdrawalRepository,
	ledger *repository.LedgerRepository,
	g *guard.Guard,
	achievements *AchievementService,
	notifier Notifier,
	addrCheck AddressValidator,
	eco config.EconomyConfig,
	rnd game.Rand,
) *EconomyService {
	return &EconomyService{
		players:      players,
		rigs:         rigs,
		boosts:       boosts,
		cards:        cards,
		withdrawals:  withdrawals,
		ledger:       ledger,
		guard:        g,
		achievements: achievements,
		notifier:     notifier,
		addrCheck:    addrCheck,
		eco:          eco,
		now:          time.Now,
		rnd:          rnd,
		eventMult:    1.0,
	}
}

// SetEventMultiplier adjusts the global mining event multiplier.
func (s *EconomyService) SetEventMultiplier(m float64) {
	s.mu.Lock()
	if m < 1.0 {
		m = 1.0
	}
	s.eventMult = m
	s.mu.Unlock()
}

func (s *EconomyService) EventMultiplier() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventMult
}

// checkActive rejects actions from banned or frozen players.
func checkActive(p *domain.Player, now time.Time) error {
	if p.Banned {
		return domain.ErrForbidden("account is banned")
	}
	if p.Frozen(now) {
		return domain.ErrForbidden("account is frozen until " + p.FrozenUntil.Format(time.RFC3339))
	}
	return nil
}

type TapResult struct {
	Coins        int64 `json:"coins"`
	Earned       int64 `json:"earned"`
	Energy       int   `json:"energy"`
	Level        int   `json:"level"`
	Experience   int64 `json:"experience"`
	LevelsGained int   `json:"levels_gained,omitempty"`
}

// Tap spends one energy and credits tap earnings. Boosts and the prestige
// multiplier are read inside the transaction so the debit and the credit
// see the same state.
func (s *EconomyService) Tap(ctx context.Context, playerID int64) (*TapResult, error) {
	now := s.now()
	if err := s.guard.Check(playerID, guard.CategoryTap, now); err != nil {
		actionsTotal.WithLabelValues("tap", "limited").Inc()
		return nil, err
	}

	var res TapResult
	p, err := s.players.ApplyMutation(ctx, playerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		if err := checkActive(p, now); err != nil {
			return nil, err
		}
		if p.Energy < 1 {
			return nil, domain.ErrInsufficientResource("not enough energy")
		}

		boosts, err := s.boosts.ActiveWithTx(ctx, tx, p.ID, now)
		if err != nil {
			return nil, err
		}
		boostMult := domain.StackedMultiplier(boosts, domain.BoostTap, now, s.eco.BoostCeiling)
		prestigeMult := game.PrestigeMultiplier(p.PrestigeLevel, s.eco.PrestigeBase)

		earned := game.TapEarnings(p.TapPower, boostMult, prestigeMult)
		p.Energy--
		p.Coins += earned
		p.TotalTaps++
		p.LastActive = now

		entries := []domain.LedgerEntry{{
			Type:       domain.EntryTap,
			CoinsDelta: earned,
			Reason:     "tap",
		}}

		exp := game.TapExperience(earned, s.eco.ExpPerTapDivisor)
		newLevel, newExp, gained := game.ApplyExperience(p.Level, p.Experience, exp, s.eco.LevelExpFactor)
		p.Level, p.Experience = newLevel, newExp
		if gained > 0 && s.eco.LevelUpBonus > 0 {
			bonus := s.eco.LevelUpBonus * int64(gained)
			p.Coins += bonus
			entries = append(entries, domain.LedgerEntry{
				Type:       domain.EntryBonus,
				CoinsDelta: bonus,
				Reason:     fmt.Sprintf("level up to %d", newLevel),
			})
		}

		res.Earned = earned
		res.LevelsGained = gained
		return entries, nil
	})
	if err != nil {
		actionsTotal.WithLabelValues("tap", "error").Inc()
		return nil, err
	}

	actionsTotal.WithLabelValues("tap", "ok").Inc()
	coinsEarnedTotal.Add(float64(res.Earned))
	res.Coins = p.Coins
	res.Energy = p.Energy
	res.Level = p.Level
	res.Experience = p.Experience

	s.afterMutation(p)
	return &res, nil
}

type MineResult struct {
	Success bool    `json:"success"`
	Reward  int64   `json:"reward"`
	Hash    int64   `json:"hash"`
	Chance  float64 `json:"chance"`
}

// Mine rolls a mining attempt against the player's active rig fleet.
// A miss changes nothing and writes no ledger entry.
func (s *EconomyService) Mine(ctx context.Context, playerID int64) (*MineResult, error) {
	now := s.now()
	if err := s.guard.Check(playerID, guard.CategoryMine, now); err != nil {
		actionsTotal.WithLabelValues("mine", "limited").Inc()
		return nil, err
	}
	eventMult := s.EventMultiplier()

	var res MineResult
	p, err := s.players.ApplyMutation(ctx, playerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		if err := checkActive(p, now); err != nil {
			return nil, err
		}

		rigs, err := s.rigs.ListActiveWithTx(ctx, tx, p.ID)
		if err != nil {
			return nil, err
		}
		if len(rigs) == 0 {
			return nil, domain.ErrInsufficientResource("no active mining rigs")
		}

		boosts, err := s.boosts.ActiveWithTx(ctx, tx, p.ID, now)
		if err != nil {
			return nil, err
		}
		boostMult := domain.StackedMultiplier(boosts, domain.BoostMine, now, s.eco.BoostCeiling)

		hashRate := domain.EffectiveHashRate(rigs)
		res.Chance = game.MiningChance(hashRate, p.Level, eventMult, s.eco.MiningChanceCap, s.eco.MiningEventCap)
		reward := game.MineAttempt(s.rnd, hashRate, p.Level, eventMult, s.eco.MiningChanceCap, s.eco.MiningEventCap)
		p.LastActive = now
		if reward == 0 {
			return nil, nil
		}
		reward = int64(math.Floor(float64(reward) * boostMult))

		p.Hash += reward
		p.TotalMined += reward
		res.Success = true
		res.Reward = reward
		return []domain.LedgerEntry{{
			Type:      domain.EntryMine,
			HashDelta: reward,
			Reason:    "mining reward",
		}}, nil
	})
	if err != nil {
		actionsTotal.WithLabelValues("mine", "error").Inc()
		return nil, err
	}

	actionsTotal.WithLabelValues("mine", "ok").Inc()
	res.Hash = p.Hash
	s.afterMutation(p)
	return &res, nil
}

// PurchaseUpgrade debits the cost and applies the effect atomically.
func (s *EconomyService) PurchaseUpgrade(ctx context.Context, playerID int64, upgradeID string) (*domain.Player, error) {
	now := s.now()
	if err := s.guard.Check(playerID, guard.CategoryPurchase, now); err != nil {
		actionsTotal.WithLabelValues("purchase", "limited").Inc()
		return nil, err
	}

	up := game.UpgradeByID(upgradeID)
	if up == nil {
		return nil, domain.ErrInvalidInput("unknown upgrade: " + upgradeID)
	}

	p, err := s.players.ApplyMutation(ctx, playerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		if err := checkActive(p, now); err != nil {
			return nil, err
		}
		if p.Coins < up.CostCoins {
			return nil, domain.ErrInsufficientFunds("not enough coins")
		}
		if p.Hash < up.CostHash {
			return nil, domain.ErrInsufficientFunds("not enough hash")
		}

		if up.RigEffect {
			affected, err := s.rigs.BoostEfficiencyWithTx(ctx, tx, p.ID, 0.05)
			if err != nil {
				return nil, err
			}
			if affected == 0 {
				return nil, domain.ErrInvalidInput("no rigs eligible for an efficiency boost")
			}
		} else {
			up.Apply(p)
		}

		p.Coins -= up.CostCoins
		p.Hash -= up.CostHash
		p.LastActive = now
		return []domain.LedgerEntry{{
			Type:       domain.EntryPurchase,
			CoinsDelta: -up.CostCoins,
			HashDelta:  -up.CostHash,
			Reason:     "upgrade: " + up.ID,
		}}, nil
	})
	if err != nil {
		actionsTotal.WithLabelValues("purchase", "error").Inc()
		return nil, err
	}

	actionsTotal.WithLabelValues("purchase", "ok").Inc()
	s.afterMutation(p)
	return p, nil
}

// BuyRig purchases a rig tier; the debit and the rig row commit together.
func (s *EconomyService) BuyRig(ctx context.Context, playerID int64, rigType string) (*domain.MiningRig, error) {
	now := s.now()
	if err := s.guard.Check(playerID, guard.CategoryPurchase, now); err != nil {
		return nil, err
	}

	spec := domain.RigSpecByType(rigType)
	if spec == nil {
		return nil, domain.ErrInvalidInput("unknown rig type: " + rigType)
	}

	var rig *domain.MiningRig
	p, err := s.players.ApplyMutation(ctx, playerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		if err := checkActive(p, now); err != nil {
			return nil, err
		}
		if p.Coins < spec.Cost {
			return nil, domain.ErrInsufficientFunds("not enough coins")
		}

		var err error
		rig, err = s.rigs.AddWithTx(ctx, tx, p.ID, spec)
		if err != nil {
			return nil, err
		}
		p.Coins -= spec.Cost
		p.LastActive = now
		return []domain.LedgerEntry{{
			Type:       domain.EntryPurchase,
			CoinsDelta: -spec.Cost,
			Reason:     "rig: " + spec.Type,
		}}, nil
	})
	if err != nil {
		actionsTotal.WithLabelValues("buy_rig", "error").Inc()
		return nil, err
	}

	actionsTotal.WithLabelValues("buy_rig", "ok").Inc()
	s.afterMutation(p)
	return rig, nil
}

// BuyEnergy trades coins for an energy refill, capped at max energy.
func (s *EconomyService) BuyEnergy(ctx context.Context, playerID int64) (*domain.Player, error) {
	now := s.now()
	if err := s.guard.Check(playerID, guard.CategoryPurchase, now); err != nil {
		return nil, err
	}

	p, err := s.players.ApplyMutation(ctx, playerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		if err := checkActive(p, now); err != nil {
			return nil, err
		}
		if p.Energy >= p.MaxEnergy {
			return nil, domain.ErrInvalidInput("energy is already full")
		}
		if p.Coins < game.EnergyRefillCost {
			return nil, domain.ErrInsufficientFunds("not enough coins")
		}

		p.Coins -= game.EnergyRefillCost
		p.Energy += game.EnergyRefillAmount
		if p.Energy > p.MaxEnergy {
			p.Energy = p.MaxEnergy
		}
		p.LastActive = now
		return []domain.LedgerEntry{{
			Type:       domain.EntryPurchase,
			CoinsDelta: -game.EnergyRefillCost,
			Reason:     "energy refill",
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	s.afterMutation(p)
	return p, nil
}

type PackResult struct {
	Card  *domain.Card `json:"card"`
	Coins int64        `json:"coins"`
}

// OpenCardPack debits the pack price and draws one card. The card's
// permanent stats land on the player row and its tap boost in the boosts
// table, all in the purchase transaction.
func (s *EconomyService) OpenCardPack(ctx context.Context, playerID int64) (*PackResult, error) {
	now := s.now()
	if err := s.guard.Check(playerID, guard.CategoryPurchase, now); err != nil {
		actionsTotal.WithLabelValues("card_pack", "limited").Inc()
		return nil, err
	}

	var res PackResult
	p, err := s.players.ApplyMutation(ctx, playerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		if err := checkActive(p, now); err != nil {
			return nil, err
		}
		if p.Coins < game.PackCost {
			return nil, domain.ErrInsufficientFunds("not enough coins")
		}

		rarity := game.RollRarity(s.rnd)
		stats := game.CardStatsByRarity(rarity)

		card := &domain.Card{
			PlayerID:         p.ID,
			Rarity:           rarity,
			PassiveCoinsHour: stats.PassiveCoinsHour,
			BoostMultiplier:  stats.BoostMultiplier,
			EnergyBonus:      stats.EnergyBonus,
		}
		if err := s.cards.AddWithTx(ctx, tx, card); err != nil {
			return nil, err
		}
		if err := s.boosts.GrantWithTx(ctx, tx, p.ID, domain.BoostTap,
			stats.BoostMultiplier, now.Add(game.CardBoostDuration)); err != nil {
			return nil, err
		}

		p.Coins -= game.PackCost
		p.PassiveCoinsHour += stats.PassiveCoinsHour
		p.MaxEnergy += stats.EnergyBonus
		p.LastActive = now

		res.Card = card
		return []domain.LedgerEntry{{
			Type:       domain.EntryPack,
			CoinsDelta: -game.PackCost,
			Reason:     "card pack: " + string(rarity),
		}}, nil
	})
	if err != nil {
		actionsTotal.WithLabelValues("card_pack", "error").Inc()
		return nil, err
	}

	actionsTotal.WithLabelValues("card_pack", "ok").Inc()
	res.Coins = p.Coins
	s.afterMutation(p)
	return &res, nil
}

// Cards lists the player's card collection.
func (s *EconomyService) Cards(ctx context.Context, playerID int64) ([]domain.Card, error) {
	return s.cards.ListByPlayer(ctx, playerID)
}

type DailyBonusResult struct {
	Bonus  int64 `json:"bonus"`
	Streak int   `json:"streak"`
	Coins  int64 `json:"coins"`
}

// ClaimDailyBonus grants one bonus per calendar day (UTC). A second claim
// the same day fails without touching state.
func (s *EconomyService) ClaimDailyBonus(ctx context.Context, playerID int64) (*DailyBonusResult, error) {
	now := s.now().UTC()

	var res DailyBonusResult
	p, err := s.players.ApplyMutation(ctx, playerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		if err := checkActive(p, now); err != nil {
			return nil, err
		}
		if p.LastBonusDate != nil && game.SameDay(p.LastBonusDate.UTC(), now) {
			return nil, domain.ErrAlreadyClaimed("daily bonus already claimed today")
		}

		streak := game.NextStreak(p.LastBonusDate, p.StreakDays, now)
		bonus := game.DailyBonus(s.eco.DailyBonusBase, streak, s.eco.StreakMultiplier, s.eco.MaxStreakDays)

		p.Coins += bonus
		p.StreakDays = streak
		claimed := now
		p.LastBonusDate = &claimed
		p.LastActive = now

		res.Bonus = bonus
		res.Streak = streak
		return []domain.LedgerEntry{{
			Type:       domain.EntryBonus,
			CoinsDelta: bonus,
			Reason:     fmt.Sprintf("daily bonus, streak %d", streak),
		}}, nil
	})
	if err != nil {
		actionsTotal.WithLabelValues("daily_bonus", "error").Inc()
		return nil, err
	}

	actionsTotal.WithLabelValues("daily_bonus", "ok").Inc()
	res.Coins = p.Coins
	s.afterMutation(p)
	return &res, nil
}

type OfflineIncomeResult struct {
	Earned int64 `json:"earned"`
	Coins  int64 `json:"coins"`
}

// ClaimOfflineIncome credits income accrued while the player was away,
// capped at the configured window. A zero accrual writes no ledger entry.
func (s *EconomyService) ClaimOfflineIncome(ctx context.Context, playerID int64) (*OfflineIncomeResult, error) {
	now := s.now()

	var res OfflineIncomeResult
	p, err := s.players.ApplyMutation(ctx, playerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		if err := checkActive(p, now); err != nil {
			return nil, err
		}

		boosts, err := s.boosts.ActiveWithTx(ctx, tx, p.ID, now)
		if err != nil {
			return nil, err
		}
		boostMult := domain.StackedMultiplier(boosts, domain.BoostOffline, now, s.eco.BoostCeiling)
		prestigeMult := game.PrestigeMultiplier(p.PrestigeLevel, s.eco.PrestigeBase)

		earned := game.OfflineIncome(p.LastActive, p.LastPassiveCredit, now, s.eco.OfflineIncomeCap,
			s.eco.OfflineBaseRate, p.TapPower, p.PassiveCoinsHour, boostMult, prestigeMult)
		p.LastActive = now
		p.LastPassiveCredit = now
		if earned == 0 {
			return nil, nil
		}

		p.Coins += earned
		res.Earned = earned
		return []domain.LedgerEntry{{
			Type:       domain.EntryOffline,
			CoinsDelta: earned,
			Reason:     "offline income",
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	res.Coins = p.Coins
	s.afterMutation(p)
	return &res, nil
}

type PrestigeResult struct {
	PrestigeLevel  int     `json:"prestige_level"`
	PointsEarned   int64   `json:"points_earned"`
	PrestigePoints int64   `json:"prestige_points"`
	Multiplier     float64 `json:"multiplier"`
}

// Prestige resets progress in exchange for a permanent earnings
// multiplier. Below the minimum level the call fails and nothing changes.
func (s *EconomyService) Prestige(ctx context.Context, playerID int64) (*PrestigeResult, error) {
	now := s.now()

	var res PrestigeResult
	p, err := s.players.ApplyMutation(ctx, playerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		if err := checkActive(p, now); err != nil {
			return nil, err
		}
		if p.Level < s.eco.PrestigeMinLevel {
			return nil, domain.ErrInvalidInput(fmt.Sprintf("level %d required for prestige", s.eco.PrestigeMinLevel))
		}

		points := game.PrestigePoints(p.Level)
		forfeited := p.Coins

		p.PrestigeLevel++
		p.PrestigePoints += points
		p.Coins = 0
		p.Level = domain.DefaultLevel
		p.Experience = 0
		p.TapPower = domain.DefaultTapPower
		p.PassiveCoinsHour = 0
		p.Energy = p.MaxEnergy
		p.LastActive = now

		res.PointsEarned = points
		return []domain.LedgerEntry{{
			Type:       domain.EntryPrestige,
			CoinsDelta: -forfeited,
			Reason:     fmt.Sprintf("prestige %d, %d points", p.PrestigeLevel, points),
		}}, nil
	})
	if err != nil {
		actionsTotal.WithLabelValues("prestige", "error").Inc()
		return nil, err
	}

	actionsTotal.WithLabelValues("prestige", "ok").Inc()
	res.PrestigeLevel = p.PrestigeLevel
	res.PrestigePoints = p.PrestigePoints
	res.Multiplier = game.PrestigeMultiplier(p.PrestigeLevel, s.eco.PrestigeBase)
	s.afterMutation(p)
	return &res, nil
}

const (
	referralRefereeBonus  = 100
	referralReferrerBonus = 200
)

// ApplyReferral links the player to the owner of the code and credits both
// sides in a single transaction. Each player can be referred once.
func (s *EconomyService) ApplyReferral(ctx context.Context, playerID int64, code string) error {
	now := s.now()

	referrer, err := s.players.GetByReferralCode(ctx, code)
	if err != nil {
		return err
	}
	if referrer.ID == playerID {
		return domain.ErrInvalidInput("cannot use your own referral code")
	}

	err = s.players.ApplyPairMutation(ctx, playerID, referrer.ID, func(tx pgx.Tx, referee, ref *domain.Player) ([]domain.LedgerEntry, error) {
		if err := checkActive(referee, now); err != nil {
			return nil, err
		}
		if referee.ReferredBy != nil {
			return nil, domain.ErrAlreadyClaimed("referral already applied")
		}

		refID := ref.ID
		referee.ReferredBy = &refID
		referee.Coins += referralRefereeBonus
		ref.ReferralsCount++
		ref.Coins += referralReferrerBonus
		return []domain.LedgerEntry{
			{PlayerID: referee.ID, Type: domain.EntryReferral, CoinsDelta: referralRefereeBonus, Reason: "referral welcome bonus"},
			{PlayerID: ref.ID, Type: domain.EntryReferral, CoinsDelta: referralReferrerBonus, Reason: fmt.Sprintf("referral bonus for player %d", referee.ID)},
		}, nil
	})
	if err != nil {
		actionsTotal.WithLabelValues("referral", "error").Inc()
		return err
	}

	actionsTotal.WithLabelValues("referral", "ok").Inc()
	go s.evaluateAchievements(referrer.ID)
	return nil
}

// RequestWithdrawal debits the hash amount and queues the request in one
// transaction. Settlement happens asynchronously; a failed settlement
// refunds through its own mutation.
func (s *EconomyService) RequestWithdrawal(ctx context.Context, playerID int64, amount int64, address string) (*domain.WithdrawalRequest, error) {
	now := s.now()
	if amount < s.eco.WithdrawalMin {
		return nil, domain.ErrInvalidInput(fmt.Sprintf("minimum withdrawal is %d hash", s.eco.WithdrawalMin))
	}
	if err := s.addrCheck.Validate(address); err != nil {
		return nil, domain.ErrInvalidInput("invalid destination address")
	}

	var req *domain.WithdrawalRequest
	_, err := s.players.ApplyMutation(ctx, playerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		if err := checkActive(p, now); err != nil {
			return nil, err
		}
		if p.Hash < amount {
			return nil, domain.ErrInsufficientFunds("not enough hash")
		}

		p.Hash -= amount
		p.LastActive = now
		req = &domain.WithdrawalRequest{PlayerID: p.ID, Amount: amount, Address: address}
		if err := s.withdrawals.CreateWithTx(ctx, tx, req); err != nil {
			return nil, err
		}
		return []domain.LedgerEntry{{
			Type:      domain.EntryWithdrawal,
			HashDelta: -amount,
			Reason:    "withdrawal " + req.Ref,
		}}, nil
	})
	if err != nil {
		actionsTotal.WithLabelValues("withdrawal", "error").Inc()
		return nil, err
	}

	actionsTotal.WithLabelValues("withdrawal", "ok").Inc()
	logger.Info("withdrawal queued", "player_id", playerID, "ref", req.Ref, "amount", amount)
	return req, nil
}

// RefundWithdrawal credits a failed settlement back to the player.
func (s *EconomyService) RefundWithdrawal(ctx context.Context, w *domain.WithdrawalRequest, reason string) error {
	_, err := s.players.ApplyMutation(ctx, w.PlayerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		p.Hash += w.Amount
		return []domain.LedgerEntry{{
			Type:      domain.EntryWithdrawal,
			HashDelta: w.Amount,
			Reason:    "withdrawal refund " + w.Ref + ": " + reason,
		}}, nil
	})
	return err
}

// PlayerView is the profile payload: state plus owned rigs and active
// boosts.
type PlayerView struct {
	Player *domain.Player     `json:"player"`
	Rigs   []domain.MiningRig `json:"rigs"`
	Boosts []domain.Boost     `json:"boosts"`
}

func (s *EconomyService) View(ctx context.Context, playerID int64) (*PlayerView, error) {
	p, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	rigs, err := s.rigs.ListActive(ctx, playerID)
	if err != nil {
		return nil, err
	}
	boosts, err := s.boosts.Active(ctx, playerID, s.now())
	if err != nil {
		return nil, err
	}
	return &PlayerView{Player: p, Rigs: rigs, Boosts: boosts}, nil
}

func (s *EconomyService) History(ctx context.Context, playerID int64, limit int) ([]domain.LedgerEntry, error) {
	return s.ledger.ListByPlayer(ctx, playerID, limit)
}

func (s *EconomyService) Withdrawals(ctx context.Context, playerID int64, limit int) ([]domain.WithdrawalRequest, error) {
	return s.withdrawals.ListByPlayer(ctx, playerID, limit)
}

// afterMutation runs the post-commit side work: achievement evaluation and
// the balance push. Both are fire-and-forget; the mutation already
// committed.
func (s *EconomyService) afterMutation(p *domain.Player) {
	go s.evaluateAchievements(p.ID)
	if s.notifier != nil {
		s.notifier.Notify(p.ID, "balance_update", map[string]any{
			"coins":  p.Coins,
			"hash":   p.Hash,
			"energy": p.Energy,
			"level":  p.Level,
		})
	}
}

func (s *EconomyService) evaluateAchievements(playerID int64) {
	if s.achievements == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.achievements.Evaluate(ctx, playerID); err != nil {
		logger.Warn("achievement evaluation failed", "player_id", playerID, "error", err)
	}
}
