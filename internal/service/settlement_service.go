package service

import (
	"context"
	"sync"
	"time"

	"quantum_clicker/internal/domain"
	"quantum_clicker/internal/logger"
	"quantum_clicker/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var settlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "clicker_settlements_total",
	Help: "Withdrawal settlements, by outcome.",
}, []string{"outcome"})

// Settler executes one payout externally and returns the transaction hash.
type Settler interface {
	Settle(ctx context.Context, w *domain.WithdrawalRequest) (txHash string, err error)
}

// SettlementService drains the withdrawal queue. Requests are claimed with
// SKIP LOCKED so multiple instances never double-pay; a failed settlement
// refunds the player through a normal ledgered mutation.
type SettlementService struct {
	withdrawals *repository.WithdrawalRepository
	economy     *EconomyService
	settler     Settler
	notifier    Notifier
	interval    time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewSettlementService(withdrawals *repository.WithdrawalRepository, economy *EconomyService, settler Settler, notifier Notifier, interval time.Duration) *SettlementService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SettlementService{
		withdrawals: withdrawals,
		economy:     economy,
		settler:     settler,
		notifier:    notifier,
		interval:    interval,
		stop:        make(chan struct{}),
	}
}

func (s *SettlementService) Start() {
	s.wg.Add(1)
	go s.loop()
	logger.Info("settlement service started", "interval", s.interval)
}

func (s *SettlementService) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *SettlementService) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			s.drain(ctx)
			cancel()
		}
	}
}

func (s *SettlementService) drain(ctx context.Context) {
	claimed, err := s.withdrawals.ClaimPending(ctx, 10)
	if err != nil {
		logger.Error("withdrawal claim failed", "error", err)
		return
	}
	for i := range claimed {
		s.settle(ctx, &claimed[i])
	}
}

func (s *SettlementService) settle(ctx context.Context, w *domain.WithdrawalRequest) {
	txHash, err := s.settler.Settle(ctx, w)
	if err != nil {
		settlementsTotal.WithLabelValues("failed").Inc()
		logger.Warn("settlement failed", "ref", w.Ref, "player_id", w.PlayerID, "error", err)

		if err := s.withdrawals.MarkFailed(ctx, w.ID, err.Error()); err != nil {
			logger.Error("mark failed errored", "ref", w.Ref, "error", err)
			return
		}
		if err := s.economy.RefundWithdrawal(ctx, w, "settlement failed"); err != nil {
			// refund retries ran out; the failed row plus the ledger make
			// the gap auditable
			logger.Error("withdrawal refund failed", "ref", w.Ref, "player_id", w.PlayerID, "error", err)
			return
		}
		s.push(w.PlayerID, "withdrawal_failed", w.Ref)
		return
	}

	if err := s.withdrawals.MarkCompleted(ctx, w.ID, txHash); err != nil {
		logger.Error("mark completed errored", "ref", w.Ref, "error", err)
		return
	}
	settlementsTotal.WithLabelValues("completed").Inc()
	logger.Info("withdrawal settled", "ref", w.Ref, "player_id", w.PlayerID, "tx", txHash)
	s.push(w.PlayerID, "withdrawal_completed", w.Ref)
}

func (s *SettlementService) push(playerID int64, event, ref string) {
	if s.notifier != nil {
		s.notifier.Notify(playerID, event, map[string]any{"ref": ref})
	}
}
