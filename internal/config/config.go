package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"quantum_clicker/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	BotToken    string
	BotUsername string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminTelegramIDs []int64 // тг id админов, через запятую в env
	AdminBotEnabled  bool

	Economy EconomyConfig
	Guard   GuardConfig
	Regen   RegenConfig
}

// EconomyConfig holds the tunable economy policy. The formulas the engine
// runs are fixed; only the coefficients come from env.
type EconomyConfig struct {
	LevelExpFactor   int64 // exp needed to clear level N is N * this
	ExpPerTapDivisor int64 // 0 means flat +1 exp per tap
	DailyBonusBase   int64
	StreakMultiplier float64
	MaxStreakDays    int
	PrestigeMinLevel int
	PrestigeBase     float64 // permanent earnings multiplier per prestige level
	LevelUpBonus     int64   // coins granted on level-up, 0 disables
	BoostCeiling     float64 // hard cap on stacked boost multipliers per category
	MiningChanceCap  float64
	MiningEventCap   float64
	WithdrawalMin    int64
	OfflineIncomeCap time.Duration
	OfflineBaseRate  float64 // coins per hour per point of tap power
}

type GuardConfig struct {
	TapsPerSecond      int
	TapsPerMinute      int
	MinesPerSecond     int
	PurchasesPerMinute int
	MinInterval        time.Duration
	SuspicionThreshold int
	IdleTTL            time.Duration
	MaxTracked         int
}

type RegenConfig struct {
	EnergyInterval  time.Duration
	PassiveInterval time.Duration
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	botUsername := os.Getenv("BOT_USERNAME")
	if botUsername == "" {
		botUsername = "QuantumClickerBot"
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	var adminIDs []int64
	if s := os.Getenv("ADMIN_TELEGRAM_IDS"); s != "" {
		for _, idStr := range strings.Split(s, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
	}

	return &Config{
		AppPort:          port,
		DatabaseURL:      dbURL,
		BotToken:         botToken,
		BotUsername:      botUsername,
		JWTSecret:        jwtSecret,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          envInt("REDIS_DB", 0),
		AdminTelegramIDs: adminIDs,
		AdminBotEnabled:  os.Getenv("ADMIN_BOT_ENABLED") == "true",
		Economy: EconomyConfig{
			LevelExpFactor:   envInt64("LEVEL_EXP_FACTOR", 100),
			ExpPerTapDivisor: envInt64("EXP_PER_TAP_DIVISOR", 10),
			DailyBonusBase:   envInt64("DAILY_BONUS_BASE", 100),
			StreakMultiplier: envFloat("STREAK_MULTIPLIER", 1.1),
			MaxStreakDays:    envInt("MAX_STREAK_DAYS", 30),
			PrestigeMinLevel: envInt("PRESTIGE_MIN_LEVEL", 100),
			PrestigeBase:     envFloat("PRESTIGE_MULTIPLIER", 1.1),
			LevelUpBonus:     envInt64("LEVEL_UP_BONUS", 50),
			BoostCeiling:     envFloat("BOOST_CEILING", 5.0),
			MiningChanceCap:  envFloat("MINING_CHANCE_CAP", 0.15),
			MiningEventCap:   envFloat("MINING_EVENT_CAP", 0.25),
			WithdrawalMin:    envInt64("WITHDRAWAL_MIN_HASH", 1000),
			OfflineIncomeCap: envDuration("OFFLINE_INCOME_CAP", 3*time.Hour),
			OfflineBaseRate:  envFloat("OFFLINE_BASE_RATE", 0.1),
		},
		Guard: GuardConfig{
			TapsPerSecond:      envInt("GUARD_TAPS_PER_SECOND", 8),
			TapsPerMinute:      envInt("GUARD_TAPS_PER_MINUTE", 200),
			MinesPerSecond:     envInt("GUARD_MINES_PER_SECOND", 3),
			PurchasesPerMinute: envInt("GUARD_PURCHASES_PER_MINUTE", 20),
			MinInterval:        envDuration("GUARD_MIN_INTERVAL", 50*time.Millisecond),
			SuspicionThreshold: envInt("GUARD_SUSPICION_THRESHOLD", 5),
			IdleTTL:            envDuration("GUARD_IDLE_TTL", 10*time.Minute),
			MaxTracked:         envInt("GUARD_MAX_TRACKED", 100000),
		},
		Regen: RegenConfig{
			EnergyInterval:  envDuration("ENERGY_REGEN_INTERVAL", time.Minute),
			PassiveInterval: envDuration("PASSIVE_CREDIT_INTERVAL", 5*time.Minute),
		},
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
