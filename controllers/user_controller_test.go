package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/beanline/beanline-api/config"
	"github.com/beanline/beanline-api/middleware"
	"github.com/beanline/beanline-api/models"
	"github.com/beanline/beanline-api/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Cafe{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	services.SetNotifier(services.NewMockNotifier())
	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's /userinfo endpoint
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		// Extract token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || len(authHeader) < 7 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		token := authHeader[7:] // Remove "Bearer " prefix

		userInfo, exists := userInfoMap[token]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	}))
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing.
// It sets up the context exactly as the real EnsureValidToken middleware does.
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)

		customClaims := &middleware.CustomClaims{
			Role: role,
		}
		mockClaims := &validator.ValidatedClaims{
			CustomClaims: customClaims,
		}
		c.Set("validated_claims", mockClaims)

		c.Next()
	}
}

// seedUser inserts a user row directly, as if the profile had already
// been bootstrapped
func seedUser(t *testing.T, db *gorm.DB, auth0ID, name, role string) *models.User {
	t.Helper()

	user := models.User{
		Auth0ID: auth0ID,
		Name:    name,
		Email:   fmt.Sprintf("%s@example.com", auth0ID[len("auth0|"):]),
		Role:    role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedCafe(t *testing.T, db *gorm.DB, ownerID uint, name string) *models.Cafe {
	t.Helper()

	cafe := models.Cafe{OwnerID: ownerID, Name: name}
	require.NoError(t, db.Create(&cafe).Error)
	return &cafe
}

func seedMenuItem(t *testing.T, db *gorm.DB, cafeID uint, name string, price float64, prepMinutes int) *models.MenuItem {
	t.Helper()

	item := models.MenuItem{
		CafeID:          cafeID,
		Name:            name,
		Price:           price,
		PreparationTime: prepMinutes,
		IsAvailable:     true,
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

// envelope decodes the standard {success, data/error} response body
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestCreateUser(t *testing.T) {
	setupTestDB(t)

	userInfoMap := map[string]*services.Auth0UserInfo{
		"token-alice": {Sub: "auth0|alice", Email: "alice@example.com", Name: "Alice", Phone: "+15550001111"},
		"token-owner": {Sub: "auth0|owner", Email: "owner@example.com", Name: "Owner"},
		"token-noemail": {Sub: "auth0|noemail", Name: "No Email"},
		"token-noname":  {Sub: "auth0|noname", Email: "noname@example.com"},
	}
	mockServer := setupMockAuth0Server(userInfoMap)
	defer mockServer.Close()

	config.SetConfig(&config.Config{GoEnv: "test", Auth0Domain: mockServer.URL})

	tests := []struct {
		name           string
		auth0ID        string
		role           string
		accessToken    string
		expectedStatus int
		expectedCode   string
		expectedRole   string
	}{
		{
			name:           "Create customer user successfully",
			auth0ID:        "auth0|alice",
			role:           "customer",
			accessToken:    "token-alice",
			expectedStatus: http.StatusCreated,
			expectedRole:   models.RoleCustomer,
		},
		{
			name:           "Create cafe owner user successfully",
			auth0ID:        "auth0|owner",
			role:           "cafe_owner",
			accessToken:    "token-owner",
			expectedStatus: http.StatusCreated,
			expectedRole:   models.RoleCafeOwner,
		},
		{
			name:           "Fail with missing email",
			auth0ID:        "auth0|noemail",
			role:           "customer",
			accessToken:    "token-noemail",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "MISSING_EMAIL",
		},
		{
			name:           "Fail with missing name",
			auth0ID:        "auth0|noname",
			role:           "customer",
			accessToken:    "token-noname",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "MISSING_NAME",
		},
		{
			name:           "Fail with unknown token",
			auth0ID:        "auth0|ghost",
			role:           "customer",
			accessToken:    "token-unknown",
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "AUTH0_ERROR",
		},
		{
			name:           "Fail with duplicate user",
			auth0ID:        "auth0|alice",
			role:           "customer",
			accessToken:    "token-alice",
			expectedStatus: http.StatusConflict,
			expectedCode:   "USER_EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/api/v1/users", mockAuthMiddleware(tt.auth0ID, tt.role, tt.accessToken), CreateUser)

			req := httptest.NewRequest("POST", "/api/v1/users", bytes.NewBuffer(nil))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			env := decodeEnvelope(t, w)
			if tt.expectedCode != "" {
				assert.False(t, env.Success)
				assert.Equal(t, tt.expectedCode, env.Error.Code)
				return
			}

			assert.True(t, env.Success)
			var user models.User
			require.NoError(t, json.Unmarshal(env.Data, &user))
			assert.Equal(t, tt.auth0ID, user.Auth0ID)
			assert.Equal(t, tt.expectedRole, user.Role)
		})
	}
}

func TestCreateUser_DefaultsToCustomerRole(t *testing.T) {
	setupTestDB(t)

	mockServer := setupMockAuth0Server(map[string]*services.Auth0UserInfo{
		"token-norole": {Sub: "auth0|norole", Email: "norole@example.com", Name: "No Role"},
	})
	defer mockServer.Close()
	config.SetConfig(&config.Config{GoEnv: "test", Auth0Domain: mockServer.URL})

	router := setupTestRouter()
	router.POST("/api/v1/users", mockAuthMiddleware("auth0|norole", "", "token-norole"), CreateUser)

	req := httptest.NewRequest("POST", "/api/v1/users", bytes.NewBuffer(nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	var user models.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, models.RoleCustomer, user.Role)
}

func TestGetMyProfile(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "auth0|alice", "Alice", models.RoleCustomer)

	t.Run("returns the caller's profile", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/api/v1/users/me", mockAuthMiddleware("auth0|alice", "customer", "token"), GetMyProfile)

		req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		var user models.User
		require.NoError(t, json.Unmarshal(env.Data, &user))
		assert.Equal(t, "Alice", user.Name)
	})

	t.Run("404 before the profile exists", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/api/v1/users/me", mockAuthMiddleware("auth0|stranger", "customer", "token"), GetMyProfile)

		req := httptest.NewRequest("GET", "/api/v1/users/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, "USER_NOT_FOUND", env.Error.Code)
	})
}
