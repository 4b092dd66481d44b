package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/beanline/beanline-api/config"
	"github.com/beanline/beanline-api/services"
	"github.com/gin-gonic/gin"
)

// respondServiceError maps a service-layer error onto the API's
// response envelope. Validation and transition errors carry their
// detail to the caller; store errors are logged and surfaced opaquely
// unless running in development mode.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": validationErr.Message,
				"field":   validationErr.Field,
			},
		})
		return
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": notFoundErr.Error(),
			},
		})
		return
	}

	var transitionErr *services.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":             "INVALID_TRANSITION",
				"message":          transitionErr.Error(),
				"current_status":   transitionErr.CurrentStatus,
				"requested_status": transitionErr.RequestedStatus,
			},
		})
		return
	}

	log.Printf("service error: %v", err)
	body := gin.H{
		"code":    "INTERNAL_ERROR",
		"message": "Something went wrong",
	}
	if config.GetConfig().IsDevelopment() {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   body,
	})
}
