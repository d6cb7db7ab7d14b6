package handlers

import (
	"quantum_clicker/internal/cache"
	"quantum_clicker/internal/repository"
	"quantum_clicker/internal/service"
)

type Handler struct {
	Players      *repository.PlayerRepository
	Economy      *service.EconomyService
	Achievements *service.AchievementService
	Leaderboard  *cache.Leaderboard
	BotToken     string
	BotUsername  string
}

func NewHandler(
	players *repository.PlayerRepository,
	economy *service.EconomyService,
	achievements *service.AchievementService,
	leaderboard *cache.Leaderboard,
	botToken, botUsername string,
) *Handler {
	return &Handler{
		Players:      players,
		Economy:      economy,
		Achievements: achievements,
		Leaderboard:  leaderboard,
		BotToken:     botToken,
		BotUsername:  botUsername,
	}
}

// playerID извлекает player_id из контекста Gin
func playerID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	v, ok := c.Get("player_id")
	if !ok {
		return 0, false
	}
	switch id := v.(type) {
	case int64:
		return id, true
	case float64:
		return int64(id), true
	default:
		return 0, false
	}
}
