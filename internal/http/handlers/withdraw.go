package handlers

import (
	"net/http"

	"quantum_clicker/internal/domain"

	"github.com/gin-gonic/gin"
)

type withdrawRequest struct {
	Amount  int64  `json:"amount"`
	Address string `json:"address"`
}

// Withdraw debits hash and queues a withdrawal request for settlement.
func (h *Handler) Withdraw(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req withdrawRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	w, err := h.Economy.RequestWithdrawal(c.Request.Context(), id, req.Amount, req.Address)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": w})
}

// Withdrawals lists the player's requests, newest first.
func (h *Handler) Withdrawals(c *gin.Context) {
	id, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	list, err := h.Economy.Withdrawals(c.Request.Context(), id, 20)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []domain.WithdrawalRequest{}
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}
