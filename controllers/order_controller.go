package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/beanline/beanline-api/middleware"
	"github.com/beanline/beanline-api/services"
	"github.com/gin-gonic/gin"
)

// CreateOrderRequest represents the request body for placing an order
type CreateOrderRequest struct {
	CafeID        uint                        `json:"cafe_id" binding:"required"`
	Items         []services.OrderItemInput   `json:"items" binding:"required"`
	OrderType     string                      `json:"order_type"`
	CustomerName  string                      `json:"customer_name"`
	CustomerPhone string                      `json:"customer_phone"`
	CustomerEmail string                      `json:"customer_email" binding:"omitempty,email"`
	Notes         string                      `json:"notes"`
}

// TransitionOrderRequest represents the request body for changing an
// order's status
type TransitionOrderRequest struct {
	Status           string `json:"status" binding:"required"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	Reason           string `json:"reason"`
}

// CreateOrder handles POST /api/v1/orders - places a new order (customers only)
func CreateOrder(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	// Parse request body
	var req CreateOrderRequest
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

	orderService := services.NewOrderService()
	order, err := orderService.CreateOrder(services.CreateOrderInput{
		CafeID:        req.CafeID,
		CustomerID:    user.ID,
		Items:         req.Items,
		OrderType:     req.OrderType,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Notes:         req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetMyOrders handles GET /api/v1/orders/me - lists the caller's own orders
func GetMyOrders(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	orderService := services.NewOrderService()
	orders, err := orderService.ListCustomerOrders(user.ID, parseStatusFilter(c), parseLimit(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetCafeOrders handles GET /api/v1/cafes/:id/orders - lists a café's
// orders (owner only)
func GetCafeOrders(c *gin.Context) {
	cafeID, ok := parseCafeID(c)
	if !ok {
		return
	}
	if !requireCafeOwnership(c, cafeID) {
		return
	}

	orderService := services.NewOrderService()
	orders, err := orderService.ListCafeOrders(cafeID, parseStatusFilter(c), parseLimit(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// TransitionOrder handles PATCH /api/v1/orders/:id/status - moves an
// order through its lifecycle (café owner only)
func TransitionOrder(c *gin.Context) {
	orderID64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid order id",
			},
		})
		return
	}
	orderID := uint(orderID64)

	var req TransitionOrderRequest
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

	orderService := services.NewOrderService()

	// The caller must own the café this order belongs to
	order, err := orderService.GetOrder(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !requireCafeOwnership(c, order.CafeID) {
		return
	}

	updated, err := orderService.TransitionOrder(orderID, req.Status, services.TransitionParams{
		EstimatedMinutes: req.EstimatedMinutes,
		Reason:           req.Reason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

// GetOrderStats handles GET /api/v1/cafes/:id/stats - aggregate order
// counts and revenue over a date range (owner only)
func GetOrderStats(c *gin.Context) {
	cafeID, ok := parseCafeID(c)
	if !ok {
		return
	}
	if !requireCafeOwnership(c, cafeID) {
		return
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	orderService := services.NewOrderService()
	stats, err := orderService.GetOrderStats(cafeID, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// parseStatusFilter reads the optional comma-separated status query
// parameter
func parseStatusFilter(c *gin.Context) []string {
	raw := c.Query("status")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	statuses := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			statuses = append(statuses, trimmed)
		}
	}
	return statuses
}

// parseLimit reads the optional limit query parameter
func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
