package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReferralInfo returns the player's code, invite link and referral count.
func (h *Handler) ReferralInfo(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p, err := h.Players.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":      p.ReferralCode,
		"link":      "https://t.me/" + h.BotUsername + "?start=" + p.ReferralCode,
		"referrals": p.ReferralsCount,
	})
}

type applyReferralRequest struct {
	Code string `json:"code"`
}

// ApplyReferral links the player to the code owner and credits both sides.
func (h *Handler) ApplyReferral(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req applyReferralRequest
	if err := c.BindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code required"})
		return
	}

	if err := h.Economy.ApplyReferral(c.Request.Context(), id, req.Code); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
