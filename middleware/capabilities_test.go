package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/beanline/beanline-api/config"
	"github.com/beanline/beanline-api/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMiddlewareTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	config.SetDB(db)
	return db
}

func TestRoleHas(t *testing.T) {
	tests := []struct {
		role       string
		capability Capability
		want       bool
	}{
		{models.RoleCustomer, CapPlaceOrder, true},
		{models.RoleCustomer, CapManageOrders, false},
		{models.RoleCustomer, CapManageMenu, false},
		{models.RoleCustomer, CapViewStats, false},
		{models.RoleCafeOwner, CapManageOrders, true},
		{models.RoleCafeOwner, CapManageMenu, true},
		{models.RoleCafeOwner, CapViewStats, true},
		{models.RoleCafeOwner, CapPlaceOrder, false},
		{models.RoleAdmin, CapPlaceOrder, true},
		{models.RoleAdmin, CapManageOrders, true},
		{models.RoleAdmin, CapManageMenu, true},
		{models.RoleAdmin, CapViewStats, true},
		{"unknown", CapPlaceOrder, false},
		{"", CapPlaceOrder, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+string(tt.capability), func(t *testing.T) {
			assert.Equal(t, tt.want, RoleHas(tt.role, tt.capability))
		})
	}
}

func TestRequireCapability(t *testing.T) {
	db := setupMiddlewareTestDB(t)

	customer := models.User{Auth0ID: "auth0|alice", Name: "Alice", Email: "alice@example.com", Role: models.RoleCustomer}
	require.NoError(t, db.Create(&customer).Error)

	gin.SetMode(gin.TestMode)

	run := func(t *testing.T, auth0ID string, capability Capability) (*httptest.ResponseRecorder, bool) {
		t.Helper()

		router := gin.New()
		handlerReached := false
		router.GET("/protected",
			func(c *gin.Context) {
				if auth0ID != "" {
					c.Set("user_id", auth0ID)
				}
				c.Next()
			},
			RequireCapability(capability),
			func(c *gin.Context) {
				handlerReached = true
				user, ok := UserFromContext(c)
				require.True(t, ok)
				assert.Equal(t, auth0ID, user.Auth0ID)
				c.Status(http.StatusOK)
			})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		router.ServeHTTP(w, req)
		return w, handlerReached
	}

	t.Run("role with the capability passes", func(t *testing.T) {
		w, reached := run(t, "auth0|alice", CapPlaceOrder)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, reached)
	})

	t.Run("role without the capability is forbidden", func(t *testing.T) {
		w, reached := run(t, "auth0|alice", CapManageOrders)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, reached)
	})

	t.Run("missing profile", func(t *testing.T) {
		w, reached := run(t, "auth0|nobody", CapPlaceOrder)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.False(t, reached)
	})

	t.Run("no identity at all", func(t *testing.T) {
		w, reached := run(t, "", CapPlaceOrder)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, reached)
	})
}
