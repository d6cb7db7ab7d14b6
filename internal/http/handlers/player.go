package handlers

import (
	"net/http"
	"strconv"

	"quantum_clicker/internal/domain"

	"github.com/gin-gonic/gin"
)

// Me returns the authenticated player's full view: state, rigs, boosts.
func (h *Handler) Me(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	view, err := h.Economy.View(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// History returns the player's recent ledger entries.
func (h *Handler) History(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.Economy.History(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// Achievements returns the full catalog annotated with the player's
// unlock state.
func (h *Handler) PlayerAchievements(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	held, err := h.Achievements.Unlocked(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	type entry struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		RewardCoins int64  `json:"reward_coins"`
		RewardHash  int64  `json:"reward_hash"`
		Unlocked    bool   `json:"unlocked"`
	}
	out := make([]entry, 0, len(domain.AchievementCatalog))
	for _, a := range domain.AchievementCatalog {
		out = append(out, entry{
			ID:          a.ID,
			Name:        a.Name,
			RewardCoins: a.RewardCoins,
			RewardHash:  a.RewardHash,
			Unlocked:    held[a.ID],
		})
	}
	c.JSON(http.StatusOK, gin.H{"achievements": out})
}
