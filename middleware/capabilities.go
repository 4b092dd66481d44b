package middleware

import (
	"net/http"

	"github.com/beanline/beanline-api/config"
	"github.com/beanline/beanline-api/models"
	"github.com/gin-gonic/gin"
)

// Capability is a named permission checked against the caller's role
type Capability string

const (
	// CapPlaceOrder allows submitting orders to a café
	CapPlaceOrder Capability = "place_order"
	// CapManageOrders allows accepting, progressing, and cancelling a café's orders
	CapManageOrders Capability = "manage_orders"
	// CapManageMenu allows creating and editing a café's menu items
	CapManageMenu Capability = "manage_menu"
	// CapViewStats allows reading a café's order statistics
	CapViewStats Capability = "view_stats"
)

// roleCapabilities is the static role -> capability mapping, expanded
// into per-role sets once at package init instead of being evaluated
// per request
var roleCapabilities = map[string][]Capability{
	models.RoleCustomer:  {CapPlaceOrder},
	models.RoleCafeOwner: {CapManageOrders, CapManageMenu, CapViewStats},
	models.RoleAdmin:     {CapPlaceOrder, CapManageOrders, CapManageMenu, CapViewStats},
}

var capabilitySets map[string]map[Capability]bool

func init() {
	capabilitySets = make(map[string]map[Capability]bool, len(roleCapabilities))
	for role, caps := range roleCapabilities {
		set := make(map[Capability]bool, len(caps))
		for _, capability := range caps {
			set[capability] = true
		}
		capabilitySets[role] = set
	}
}

// RoleHas reports whether a role grants a capability
func RoleHas(role string, capability Capability) bool {
	return capabilitySets[role][capability]
}

// CurrentUser loads the authenticated caller's user row. The identity
// itself comes from the validated token; this only resolves it to the
// local profile.
func CurrentUser(c *gin.Context) (*models.User, error) {
	auth0ID, err := GetUserID(c)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		return nil, &AuthError{Code: "USER_NOT_FOUND", Message: "User profile not found. Please create a profile first."}
	}

	return &user, nil
}

// RequireCapability resolves the caller's profile and aborts with 403
// unless their role grants the capability. The resolved user is stored
// in the context under "current_user" for the handler.
func RequireCapability(capability Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := CurrentUser(c)
		if err != nil {
			authErr, ok := err.(*AuthError)
			status := http.StatusUnauthorized
			code := "UNAUTHORIZED"
			if ok && authErr.Code == "USER_NOT_FOUND" {
				status = http.StatusNotFound
				code = authErr.Code
			}
			c.JSON(status, gin.H{
				"success": false,
				"error": gin.H{
					"code":    code,
					"message": err.Error(),
				},
			})
			c.Abort()
			return
		}

		if !RoleHas(user.Role, capability) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Your role does not allow this action",
				},
			})
			c.Abort()
			return
		}

		c.Set("current_user", user)
		c.Next()
	}
}

// ResolveUser loads the caller's profile into the context without any
// capability check. Used by endpoints every authenticated user may
// call, like listing their own orders.
func ResolveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := CurrentUser(c)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User profile not found. Please create a profile first.",
				},
			})
			c.Abort()
			return
		}
		c.Set("current_user", user)
		c.Next()
	}
}

// UserFromContext returns the user stored by RequireCapability
func UserFromContext(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("current_user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
