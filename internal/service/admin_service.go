package service

import (
	"context"
	"fmt"
	"time"

	"quantum_clicker/internal/domain"
	"quantum_clicker/internal/guard"
	"quantum_clicker/internal/logger"
	"quantum_clicker/internal/repository"

	"github.com/jackc/pgx/v5"
)

// AdminCommandKind selects the moderation action.
type AdminCommandKind string

const (
	AdminBan       AdminCommandKind = "ban"
	AdminUnban     AdminCommandKind = "unban"
	AdminFreeze    AdminCommandKind = "freeze"
	AdminAdjust    AdminCommandKind = "adjust"
	AdminSetEvent  AdminCommandKind = "set_event"
	AdminBulkGrant AdminCommandKind = "bulk_grant"
	AdminBoost     AdminCommandKind = "boost"
)

// AdminCommand is one moderation instruction. Only the fields relevant to
// the kind are read.
type AdminCommand struct {
	Kind       AdminCommandKind
	PlayerID   int64
	Reason     string
	Duration   time.Duration // freeze window / boost lifetime
	CoinsDelta int64         // adjust / bulk_grant
	HashDelta  int64
	Multiplier float64              // set_event / boost
	Category   domain.BoostCategory // boost; empty means tap
	ActorTgID  int64                // admin issuing the command, for the audit reason
}

// AdminService executes moderation commands through the same mutation
// primitive as player actions, so every adjustment lands in the ledger.
type AdminService struct {
	players *repository.PlayerRepository
	boosts  *repository.BoostRepository
	guard   *guard.Guard
	economy *EconomyService
}

func NewAdminService(players *repository.PlayerRepository, boosts *repository.BoostRepository, g *guard.Guard, economy *EconomyService) *AdminService {
	return &AdminService{players: players, boosts: boosts, guard: g, economy: economy}
}

func (s *AdminService) Execute(ctx context.Context, cmd AdminCommand) error {
	var err error
	switch cmd.Kind {
	case AdminBan:
		err = s.setBan(ctx, cmd.PlayerID, true, cmd.Reason, cmd.ActorTgID)
	case AdminUnban:
		err = s.setBan(ctx, cmd.PlayerID, false, "", cmd.ActorTgID)
	case AdminFreeze:
		err = s.freeze(ctx, cmd.PlayerID, cmd.Duration, cmd.ActorTgID)
	case AdminAdjust:
		err = s.adjust(ctx, cmd.PlayerID, cmd.CoinsDelta, cmd.HashDelta, cmd.Reason, cmd.ActorTgID)
	case AdminSetEvent:
		s.economy.SetEventMultiplier(cmd.Multiplier)
		logger.Info("mining event multiplier set", "multiplier", cmd.Multiplier, "admin", cmd.ActorTgID)
	case AdminBulkGrant:
		err = s.bulkGrant(ctx, cmd.CoinsDelta, cmd.HashDelta, cmd.Reason, cmd.ActorTgID)
	case AdminBoost:
		err = s.grantBoost(ctx, cmd.PlayerID, cmd.Category, cmd.Multiplier, cmd.Duration, cmd.ActorTgID)
	default:
		err = domain.ErrInvalidInput("unknown admin command: " + string(cmd.Kind))
	}
	return err
}

func (s *AdminService) setBan(ctx context.Context, playerID int64, banned bool, reason string, actor int64) error {
	_, err := s.players.ApplyMutation(ctx, playerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		p.Banned = banned
		p.BanReason = reason
		if !banned {
			p.Suspicion = 0
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	if !banned {
		s.guard.Reset(playerID)
	}
	logger.Info("ban state changed", "player_id", playerID, "banned", banned, "admin", actor)
	return nil
}

func (s *AdminService) freeze(ctx context.Context, playerID int64, d time.Duration, actor int64) error {
	if d <= 0 {
		return domain.ErrInvalidInput("freeze duration must be positive")
	}
	until := time.Now().Add(d)
	_, err := s.players.ApplyMutation(ctx, playerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		p.FrozenUntil = &until
		return nil, nil
	})
	if err != nil {
		return err
	}
	logger.Info("player frozen", "player_id", playerID, "until", until, "admin", actor)
	return nil
}

// grantBoost attaches a time-limited tap boost to one player. The player
// row is locked so the grant serializes with in-flight actions.
func (s *AdminService) grantBoost(ctx context.Context, playerID int64, cat domain.BoostCategory, mult float64, d time.Duration, actor int64) error {
	switch cat {
	case "":
		cat = domain.BoostTap
	case domain.BoostTap, domain.BoostMine, domain.BoostOffline:
	default:
		return domain.ErrInvalidInput("unknown boost category: " + string(cat))
	}
	if mult <= 1.0 {
		return domain.ErrInvalidInput("boost multiplier must exceed 1.0")
	}
	if d <= 0 {
		return domain.ErrInvalidInput("boost duration must be positive")
	}
	_, err := s.players.ApplyMutation(ctx, playerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		return nil, s.boosts.GrantWithTx(ctx, tx, p.ID, cat, mult, time.Now().Add(d))
	})
	if err != nil {
		return err
	}
	logger.Info("boost granted", "player_id", playerID, "category", cat, "multiplier", mult, "duration", d, "admin", actor)
	return nil
}

// adjust credits or debits balances manually. A debit may not push a
// balance negative.
func (s *AdminService) adjust(ctx context.Context, playerID, coinsDelta, hashDelta int64, reason string, actor int64) error {
	if coinsDelta == 0 && hashDelta == 0 {
		return domain.ErrInvalidInput("nothing to adjust")
	}
	_, err := s.players.ApplyMutation(ctx, playerID, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
		if p.Coins+coinsDelta < 0 || p.Hash+hashDelta < 0 {
			return nil, domain.ErrInvalidInput("adjustment would make a balance negative")
		}
		p.Coins += coinsDelta
		p.Hash += hashDelta
		return []domain.LedgerEntry{{
			Type:       domain.EntryAdmin,
			CoinsDelta: coinsDelta,
			HashDelta:  hashDelta,
			Reason:     fmt.Sprintf("admin %d: %s", actor, reason),
		}}, nil
	})
	return err
}

// bulkGrant credits every non-banned player, one mutation per row so each
// grant is individually ledgered and a mid-run failure loses nothing
// already committed.
func (s *AdminService) bulkGrant(ctx context.Context, coinsDelta, hashDelta int64, reason string, actor int64) error {
	if coinsDelta < 0 || hashDelta < 0 || (coinsDelta == 0 && hashDelta == 0) {
		return domain.ErrInvalidInput("bulk grant must credit a positive amount")
	}
	ids, err := s.players.ActiveIDs(ctx)
	if err != nil {
		return err
	}
	granted := 0
	for _, id := range ids {
		_, err := s.players.ApplyMutation(ctx, id, func(tx pgx.Tx, p *domain.Player) ([]domain.LedgerEntry, error) {
			p.Coins += coinsDelta
			p.Hash += hashDelta
			return []domain.LedgerEntry{{
				Type:       domain.EntryAdmin,
				CoinsDelta: coinsDelta,
				HashDelta:  hashDelta,
				Reason:     fmt.Sprintf("admin %d bulk grant: %s", actor, reason),
			}}, nil
		})
		if err != nil {
			logger.Warn("bulk grant skipped player", "player_id", id, "error", err)
			continue
		}
		granted++
	}
	logger.Info("bulk grant done", "players", granted, "admin", actor)
	return nil
}

func (s *AdminService) Stats(ctx context.Context) (*repository.Stats, error) {
	return s.players.GetStats(ctx)
}

// SuspiciousPlayers returns the guard's current flag list.
func (s *AdminService) SuspiciousPlayers() []int64 {
	return s.guard.SuspiciousPlayers()
}
