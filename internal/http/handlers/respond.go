package handlers

import (
	"net/http"

	"quantum_clicker/internal/domain"
	"quantum_clicker/internal/logger"

	"github.com/gin-gonic/gin"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Unknown
// errors become an opaque 500 so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)

	var status int
	switch kind {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindInsufficientResource, domain.KindInsufficientFunds, domain.KindInvalidInput:
		status = http.StatusBadRequest
	case domain.KindRateLimited:
		status = http.StatusTooManyRequests
	case domain.KindAlreadyClaimed, domain.KindConflict:
		status = http.StatusConflict
	case domain.KindUnavailable:
		status = http.StatusServiceUnavailable
	default:
		logger.Error("unhandled error in handler", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error(), "kind": string(kind)})
}
