package service

import (
	"context"
	"sync"
	"time"

	"quantum_clicker/internal/config"
	"quantum_clicker/internal/logger"
	"quantum_clicker/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	regenPlayersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clicker_energy_regen_players_total",
		Help: "Player rows touched by energy regeneration ticks.",
	})
	passiveCreditsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clicker_passive_credits_total",
		Help: "Passive income credits written.",
	})
)

// RegenService is the clock worker: periodic energy regeneration and
// passive income credits. Passive credits are computed from elapsed real
// time, so a missed tick is made up by the next one.
type RegenService struct {
	players *repository.PlayerRepository
	boosts  *repository.BoostRepository
	cfg     config.RegenConfig
	eco     config.EconomyConfig

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewRegenService(players *repository.PlayerRepository, boosts *repository.BoostRepository, cfg config.RegenConfig, eco config.EconomyConfig) *RegenService {
	return &RegenService{
		players: players,
		boosts:  boosts,
		cfg:     cfg,
		eco:     eco,
		stop:    make(chan struct{}),
	}
}

func (s *RegenService) Start() {
	s.wg.Add(2)
	go s.energyLoop()
	go s.passiveLoop()
	logger.Info("regen service started",
		"energy_interval", s.cfg.EnergyInterval,
		"passive_interval", s.cfg.PassiveInterval)
}

// Stop signals the loops and waits for the running tick to finish.
func (s *RegenService) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *RegenService) energyLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.EnergyInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := s.players.RegenerateEnergy(ctx)
			cancel()
			if err != nil {
				logger.Error("energy regen tick failed", "error", err)
				continue
			}
			regenPlayersTotal.Add(float64(n))
		}
	}
}

func (s *RegenService) passiveLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.PassiveInterval)
	defer ticker.Stop()

	capHours := s.eco.OfflineIncomeCap.Hours()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := s.players.CreditPassiveIncome(ctx, capHours)
			if err != nil {
				logger.Error("passive income tick failed", "error", err)
				cancel()
				continue
			}
			passiveCreditsTotal.Add(float64(n))

			if pruned, err := s.boosts.PruneExpired(ctx, time.Now()); err != nil {
				logger.Warn("boost prune failed", "error", err)
			} else if pruned > 0 {
				logger.Info("expired boosts pruned", "count", pruned)
			}
			cancel()
		}
	}
}
