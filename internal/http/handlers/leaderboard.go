package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Top returns the leaderboard for a metric (coins, hash, taps, level,
// prestige). Public.
func (h *Handler) Top(c *gin.Context) {
	metric := c.DefaultQuery("metric", "coins")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.Leaderboard.Top(c.Request.Context(), metric, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metric": metric, "entries": entries})
}
