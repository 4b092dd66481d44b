package controllers

import (
	"net/http"

	"github.com/beanline/beanline-api/services"
	"github.com/gin-gonic/gin"
)

// GetQueue handles GET /api/v1/cafes/:id/queue - the café's current
// queue with full customer names (owner only)
func GetQueue(c *gin.Context) {
	cafeID, ok := parseCafeID(c)
	if !ok {
		return
	}
	if !requireCafeOwnership(c, cafeID) {
		return
	}

	queueService := services.NewQueueService()
	queue, err := queueService.GetQueue(cafeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    queue,
	})
}

// GetPublicQueue handles GET /api/v1/cafes/:id/queue/public - the
// anonymized queue view, no authentication required
func GetPublicQueue(c *gin.Context) {
	cafeID, ok := parseCafeID(c)
	if !ok {
		return
	}

	queueService := services.NewQueueService()
	queue, err := queueService.GetPublicQueue(cafeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    queue,
	})
}

// GetQueueInfo handles GET /api/v1/cafes/:id/queue/info - queue length
// and estimated wait, no authentication required
func GetQueueInfo(c *gin.Context) {
	cafeID, ok := parseCafeID(c)
	if !ok {
		return
	}

	queueService := services.NewQueueService()
	info, err := queueService.GetQueueInfo(cafeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    info,
	})
}
