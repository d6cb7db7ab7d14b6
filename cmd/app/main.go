package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quantum_clicker/internal/bot"
	"quantum_clicker/internal/cache"
	"quantum_clicker/internal/config"
	"quantum_clicker/internal/db"
	"quantum_clicker/internal/guard"
	httpServer "quantum_clicker/internal/http"
	"quantum_clicker/internal/http/middleware"
	"quantum_clicker/internal/logger"
	"quantum_clicker/internal/repository"
	"quantum_clicker/internal/service"
	"quantum_clicker/internal/ton"
	"quantum_clicker/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")
	cfg := config.Load()
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	redisClient := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// repositories
	players := repository.NewPlayerRepository(dbPool)
	rigs := repository.NewRigRepository(dbPool)
	boosts := repository.NewBoostRepository(dbPool)
	cards := repository.NewCardRepository(dbPool)
	withdrawals := repository.NewWithdrawalRepository(dbPool)
	ledger := repository.NewLedgerRepository(dbPool)
	unlocks := repository.NewAchievementRepository(dbPool)

	// abuse guard
	g := guard.New(guard.Config{
		TapsPerSecond:      cfg.Guard.TapsPerSecond,
		TapsPerMinute:      cfg.Guard.TapsPerMinute,
		MinesPerSecond:     cfg.Guard.MinesPerSecond,
		PurchasesPerMinute: cfg.Guard.PurchasesPerMinute,
		MinInterval:        cfg.Guard.MinInterval,
		SuspicionThreshold: cfg.Guard.SuspicionThreshold,
		IdleTTL:            cfg.Guard.IdleTTL,
		MaxTracked:         cfg.Guard.MaxTracked,
	})
	guardStop := make(chan struct{})
	g.StartEviction(guardStop)
	defer close(guardStop)

	hub := ws.NewHub()
	achievements := service.NewAchievementService(players, unlocks, hub)

	economy := service.NewEconomyService(
		players, rigs, boosts, cards, withdrawals, ledger,
		g, achievements, hub, ton.NewValidator(), cfg.Economy,
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)
	admin := service.NewAdminService(players, boosts, g, economy)

	// leaderboard cache
	leaderboard := cache.NewLeaderboard(redisClient, players)
	leaderboard.StartRefresh(time.Minute)
	defer leaderboard.StopRefresh()

	// clock worker
	regen := service.NewRegenService(players, boosts, cfg.Regen, cfg.Economy)
	regen.Start()
	defer regen.Stop()

	// settlement worker: real payouts when a hot wallet is configured,
	// dry-run otherwise
	var settler service.Settler = ton.DryRunSettler{}
	if mnemonic := os.Getenv("TON_WALLET_MNEMONIC"); mnemonic != "" {
		network := ton.NetworkMainnet
		if os.Getenv("TON_NETWORK") == "testnet" {
			network = ton.NetworkTestnet
		}
		nanoPerHash := uint64(1_000_000) // 0.000001 TON per hash unit
		if v := os.Getenv("TON_NANO_PER_HASH"); v != "" {
			if n, err := strconv.ParseUint(v, 10, 64); err == nil {
				nanoPerHash = n
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		s, err := ton.NewSettler(ctx, mnemonic, network, nanoPerHash)
		cancel()
		if err != nil {
			logger.Fatal("ton settler init failed", "error", err)
		}
		logger.Info("ton settler ready", "address", s.Address(), "network", network)
		settler = s
	}
	settlement := service.NewSettlementService(withdrawals, economy, settler, hub, 30*time.Second)
	settlement.Start()
	defer settlement.Stop()

	// admin bot
	var adminBot *bot.AdminBot
	if cfg.AdminBotEnabled && len(cfg.AdminTelegramIDs) > 0 {
		var err error
		adminBot, err = bot.NewAdminBot(cfg.BotToken, admin, cfg.AdminTelegramIDs)
		if err != nil {
			logger.Fatal("admin bot init failed", "error", err)
		}
		go adminBot.Start()
		defer adminBot.Stop()

		// alert admins when the guard flags a player, and persist the
		// strike count for moderation
		g.OnSuspicious = func(playerID int64, strikes int) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = players.BumpSuspicion(ctx, playerID, strikes)
			adminBot.NotifyAdmins(fmt.Sprintf("abuse guard flagged player %d (%d strikes)", playerID, strikes))
		}
	} else {
		g.OnSuspicious = func(playerID int64, strikes int) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = players.BumpSuspicion(ctx, playerID, strikes)
		}
	}

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, httpServer.Deps{
		DB:           dbPool,
		Players:      players,
		Economy:      economy,
		Achievements: achievements,
		Leaderboard:  leaderboard,
		Hub:          hub,
		BotToken:     cfg.BotToken,
		BotUsername:  cfg.BotUsername,
		Version:      version,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
