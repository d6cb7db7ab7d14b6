package http

import (
	"os"
	"strconv"
	"time"

	"quantum_clicker/internal/cache"
	"quantum_clicker/internal/http/handlers"
	"quantum_clicker/internal/http/middleware"
	"quantum_clicker/internal/repository"
	"quantum_clicker/internal/service"
	"quantum_clicker/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps carries everything the route tree needs.
type Deps struct {
	DB           *pgxpool.Pool
	Players      *repository.PlayerRepository
	Economy      *service.EconomyService
	Achievements *service.AchievementService
	Leaderboard  *cache.Leaderboard
	Hub          *ws.Hub
	BotToken     string
	BotUsername  string
	Version      string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := handlers.NewHandler(d.Players, d.Economy, d.Achievements, d.Leaderboard, d.BotToken, d.BotUsername)
	healthHandler := handlers.NewHealthHandler(d.DB, d.Version)

	// transport-level limits from env, with safe defaults
	apiRateLimit := envIntDefault("API_RATE_LIMIT", 120)
	apiRateWindow := envSecondsDefault("API_RATE_WINDOW_SECONDS", time.Minute)
	authRateLimit := envIntDefault("AUTH_RATE_LIMIT", 5)
	authRateWindow := envSecondsDefault("AUTH_RATE_WINDOW_SECONDS", time.Minute)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))

	// Auth
	v1.POST("/auth", middleware.RedisRateLimit(authRateLimit, authRateWindow), h.Auth)

	// Player state
	v1.GET("/me", middleware.JWT(), h.Me)
	v1.GET("/me/history", middleware.JWT(), h.History)
	v1.GET("/me/achievements", middleware.JWT(), h.PlayerAchievements)
	v1.GET("/me/cards", middleware.JWT(), h.Cards)

	// Core actions: the fine-grained per-player limits live in the abuse
	// guard inside the economy engine, not here
	v1.POST("/tap", middleware.JWT(), h.Tap)
	v1.POST("/mine", middleware.JWT(), h.Mine)
	v1.POST("/bonus/daily", middleware.JWT(), h.DailyBonus)
	v1.POST("/bonus/offline", middleware.JWT(), h.OfflineIncome)
	v1.POST("/prestige", middleware.JWT(), h.Prestige)

	// Shop
	v1.GET("/shop", h.ShopInfo)
	v1.POST("/shop/upgrade", middleware.JWT(), h.PurchaseUpgrade)
	v1.POST("/shop/rig", middleware.JWT(), h.BuyRig)
	v1.POST("/shop/energy", middleware.JWT(), h.BuyEnergy)
	v1.POST("/shop/pack", middleware.JWT(), h.OpenCardPack)

	// Referral
	v1.GET("/referral", middleware.JWT(), h.ReferralInfo)
	v1.POST("/referral/apply", middleware.JWT(), h.ApplyReferral)

	// Withdrawals
	v1.POST("/withdraw", middleware.JWT(), h.Withdraw)
	v1.GET("/withdrawals", middleware.JWT(), h.Withdrawals)

	// Leaderboard
	v1.GET("/leaderboard", h.Top)

	// Event push
	r.GET("/ws", h.WS(d.Hub))
}

func envIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envSecondsDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
