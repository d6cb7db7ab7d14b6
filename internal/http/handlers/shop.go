package handlers

import (
	"net/http"

	"quantum_clicker/internal/domain"
	"quantum_clicker/internal/game"

	"github.com/gin-gonic/gin"
)

// ShopInfo lists purchasable upgrades and rig tiers. Public, no auth.
func (h *Handler) ShopInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"upgrades": game.Upgrades,
		"rigs":     domain.RigCatalog,
		"energy_refill": gin.H{
			"amount": game.EnergyRefillAmount,
			"cost":   game.EnergyRefillCost,
		},
		"card_pack": gin.H{
			"cost": game.PackCost,
		},
	})
}

type purchaseRequest struct {
	UpgradeID string `json:"upgrade_id"`
}

// PurchaseUpgrade buys one upgrade by id.
func (h *Handler) PurchaseUpgrade(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req purchaseRequest
	if err := c.BindJSON(&req); err != nil || req.UpgradeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "upgrade_id required"})
		return
	}

	p, err := h.Economy.PurchaseUpgrade(c.Request.Context(), id, req.UpgradeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": p})
}

type buyRigRequest struct {
	RigType string `json:"rig_type"`
}

// BuyRig buys one mining rig tier.
func (h *Handler) BuyRig(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req buyRigRequest
	if err := c.BindJSON(&req); err != nil || req.RigType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rig_type required"})
		return
	}

	rig, err := h.Economy.BuyRig(c.Request.Context(), id, req.RigType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rig": rig})
}

// OpenCardPack buys and opens one card pack.
func (h *Handler) OpenCardPack(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.Economy.OpenCardPack(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Cards lists the player's card collection.
func (h *Handler) Cards(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	cards, err := h.Economy.Cards(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if cards == nil {
		cards = []domain.Card{}
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// BuyEnergy trades coins for an energy refill.
func (h *Handler) BuyEnergy(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p, err := h.Economy.BuyEnergy(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": p})
}
