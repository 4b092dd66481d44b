package controllers

import (
	"net/http"
	"strconv"

	"github.com/beanline/beanline-api/config"
	"github.com/beanline/beanline-api/models"
	"github.com/beanline/beanline-api/services"
	"github.com/gin-gonic/gin"
)

// CreateMenuItemRequest represents the request body for adding a menu item
type CreateMenuItemRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	PreparationTime int     `json:"preparation_time" binding:"required,gt=0"`
}

// GetMenu handles GET /api/v1/cafes/:id/menu - lists a café's available
// menu items, no authentication required
func GetMenu(c *gin.Context) {
	cafeID, ok := parseCafeID(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var cafe models.Cafe
	if err := db.First(&cafe, cafeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Cafe not found",
			},
		})
		return
	}

	var items []models.MenuItem
	if err := db.Where("cafe_id = ? AND is_available = ?", cafeID, true).
		Order("name asc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load menu",
			},
		})
		return
	}

	// Attach presigned photo URLs when a photo service is configured
	if photoService := services.GetPhotoService(); photoService != nil {
		for i := range items {
			if items[i].PhotoS3Key == nil {
				continue
			}
			if url, err := photoService.GetPhotoURL(*items[i].PhotoS3Key); err == nil && url != "" {
				items[i].PhotoURL = &url
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
	})
}

// CreateMenuItem handles POST /api/v1/cafes/:id/menu - adds a menu item
// (owner only)
func CreateMenuItem(c *gin.Context) {
	cafeID, ok := parseCafeID(c)
	if !ok {
		return
	}
	if !requireCafeOwnership(c, cafeID) {
		return
	}

	var req CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	item := models.MenuItem{
		CafeID:          cafeID,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		PreparationTime: req.PreparationTime,
		IsAvailable:     true,
	}

	db := config.GetDB()
	if err := db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create menu item",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    item,
	})
}

// UploadMenuItemPhoto handles POST /api/v1/menu-items/:id/photo -
// uploads a photo for a menu item (owner only)
func UploadMenuItemPhoto(c *gin.Context) {
	itemID64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid menu item id",
			},
		})
		return
	}

	db := config.GetDB()
	var item models.MenuItem
	if err := db.First(&item, uint(itemID64)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Menu item not found",
			},
		})
		return
	}
	if !requireCafeOwnership(c, item.CafeID) {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Photo file is required",
			},
		})
		return
	}

	photoService := services.GetPhotoService()
	if photoService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_UNAVAILABLE",
				"message": "Photo storage is not configured",
			},
		})
		return
	}

	photoKey, err := photoService.UploadPhoto(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	// Replace any previous photo
	if item.PhotoS3Key != nil {
		if err := photoService.DeletePhoto(*item.PhotoS3Key); err != nil {
			// Orphaned object in the bucket, not worth failing the upload
			c.Error(err) //nolint:errcheck
		}
	}

	if err := db.Model(&item).Update("photo_s3_key", photoKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save photo reference",
			},
		})
		return
	}

	item.PhotoS3Key = &photoKey
	if url, err := photoService.GetPhotoURL(photoKey); err == nil && url != "" {
		item.PhotoURL = &url
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    item,
	})
}
