package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/beanline/beanline-api/config"
	"github.com/beanline/beanline-api/middleware"
	"github.com/beanline/beanline-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// parseCafeID reads the :id route parameter. On failure it writes the
// error response and returns ok=false.
func parseCafeID(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id64 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid cafe id",
			},
		})
		return 0, false
	}
	return uint(id64), true
}

// requireCafeOwnership verifies the authenticated caller owns the café
// (admins pass). On failure it writes the error response and returns
// false.
func requireCafeOwnership(c *gin.Context, cafeID uint) bool {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return false
	}

	db := config.GetDB()
	var cafe models.Cafe
	if err := db.First(&cafe, cafeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": fmt.Sprintf("cafe %d not found", cafeID),
				},
			})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load cafe",
			},
		})
		return false
	}

	if user.Role != models.RoleAdmin && cafe.OwnerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not own this cafe",
			},
		})
		return false
	}

	return true
}

// parseDateRange reads the optional from/to query parameters. Dates
// may be RFC3339 timestamps or plain YYYY-MM-DD days; a day given for
// "to" is treated inclusively. Defaults to the last 30 days.
func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.Query("from"); raw != "" {
		parsed, _, err := parseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'from' date %q", raw)
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, dayOnly, err := parseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'to' date %q", raw)
		}
		if dayOnly {
			parsed = parsed.AddDate(0, 0, 1)
		}
		to = parsed
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("'to' date is before 'from' date")
	}
	return from, to, nil
}

func parseDate(raw string) (time.Time, bool, error) {
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed, true, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	return parsed, false, err
}
