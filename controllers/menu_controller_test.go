package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/beanline/beanline-api/middleware"
	"github.com/beanline/beanline-api/models"
	"github.com/beanline/beanline-api/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMenuRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	v1 := router.Group("/api/v1")
	v1.GET("/cafes/:id/menu", GetMenu)
	v1.POST("/cafes/:id/menu", auth, middleware.RequireCapability(middleware.CapManageMenu), CreateMenuItem)
	v1.POST("/menu-items/:id/photo", auth, middleware.RequireCapability(middleware.CapManageMenu), UploadMenuItemPhoto)
}

func TestGetMenuEndpoint(t *testing.T) {
	db := setupTestDB(t)
	services.SetPhotoService(nil)
	owner := seedUser(t, db, "auth0|owner", "Owner", models.RoleCafeOwner)
	cafe := seedCafe(t, db, owner.ID, "Roastery")
	seedMenuItem(t, db, cafe.ID, "Latte", 10, 4)
	hidden := seedMenuItem(t, db, cafe.ID, "Retired Blend", 8, 3)
	require.NoError(t, db.Model(hidden).Update("is_available", false).Error)

	router := setupTestRouter()
	setupMenuRoutes(router, mockAuthMiddleware("auth0|owner", models.RoleCafeOwner, "token"))

	t.Run("lists available items only", func(t *testing.T) {
		req := httptest.NewRequest("GET", fmt.Sprintf("/api/v1/cafes/%d/menu", cafe.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		var items []models.MenuItem
		require.NoError(t, json.Unmarshal(env.Data, &items))
		require.Len(t, items, 1)
		assert.Equal(t, "Latte", items[0].Name)
	})

	t.Run("unknown cafe", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/cafes/9999/menu", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCreateMenuItemEndpoint(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "auth0|owner", "Owner", models.RoleCafeOwner)
	seedUser(t, db, "auth0|alice", "Alice", models.RoleCustomer)
	cafe := seedCafe(t, db, owner.ID, "Roastery")

	createItem := func(t *testing.T, auth0ID, role string, body interface{}) *httptest.ResponseRecorder {
		t.Helper()
		router := setupTestRouter()
		setupMenuRoutes(router, mockAuthMiddleware(auth0ID, role, "token"))
		return postJSON(t, router, "POST", fmt.Sprintf("/api/v1/cafes/%d/menu", cafe.ID), body)
	}

	t.Run("owner adds an item", func(t *testing.T) {
		w := createItem(t, "auth0|owner", models.RoleCafeOwner, CreateMenuItemRequest{
			Name:            "Flat White",
			Price:           4.5,
			PreparationTime: 3,
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		env := decodeEnvelope(t, w)
		var item models.MenuItem
		require.NoError(t, json.Unmarshal(env.Data, &item))
		assert.Equal(t, cafe.ID, item.CafeID)
		assert.True(t, item.IsAvailable)
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		w := createItem(t, "auth0|alice", models.RoleCustomer, CreateMenuItemRequest{
			Name:            "Mocha",
			Price:           5,
			PreparationTime: 4,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		w := createItem(t, "auth0|owner", models.RoleCafeOwner, map[string]interface{}{
			"name":             "Freebie",
			"price":            0,
			"preparation_time": 3,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// multipartPhoto builds a multipart body with a single photo field
func multipartPhoto(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadMenuItemPhotoEndpoint(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "auth0|owner", "Owner", models.RoleCafeOwner)
	cafe := seedCafe(t, db, owner.ID, "Roastery")
	item := seedMenuItem(t, db, cafe.ID, "Latte", 10, 4)

	mockPhotos := services.NewMockPhotoService()
	mockPhotos.SetAsMockForTesting()
	defer services.SetPhotoService(nil)

	upload := func(t *testing.T, itemID uint, filename string, content []byte) *httptest.ResponseRecorder {
		t.Helper()
		router := setupTestRouter()
		setupMenuRoutes(router, mockAuthMiddleware("auth0|owner", models.RoleCafeOwner, "token"))

		body, contentType := multipartPhoto(t, filename, content)
		req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/menu-items/%d/photo", itemID), body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("uploads and stores the photo key", func(t *testing.T) {
		w := upload(t, item.ID, "latte.png", []byte("fake png bytes"))
		assert.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		var updated models.MenuItem
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		require.NotNil(t, updated.PhotoS3Key)
		assert.True(t, mockPhotos.PhotoExists(*updated.PhotoS3Key))
		require.NotNil(t, updated.PhotoURL)
	})

	t.Run("replaces the previous photo", func(t *testing.T) {
		first := upload(t, item.ID, "old.png", []byte("old"))
		require.Equal(t, http.StatusOK, first.Code)
		var firstItem models.MenuItem
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, first).Data, &firstItem))

		second := upload(t, item.ID, "new.png", []byte("new"))
		require.Equal(t, http.StatusOK, second.Code)

		assert.False(t, mockPhotos.PhotoExists(*firstItem.PhotoS3Key))
	})

	t.Run("rejects unsupported formats", func(t *testing.T) {
		w := upload(t, item.ID, "menu.pdf", []byte("%PDF"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, "UPLOAD_FAILED", env.Error.Code)
	})

	t.Run("unknown menu item", func(t *testing.T) {
		w := upload(t, 9999, "latte.png", []byte("png"))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("storage unavailable", func(t *testing.T) {
		services.SetPhotoService(nil)
		defer mockPhotos.SetAsMockForTesting()

		w := upload(t, item.ID, "latte.png", []byte("png"))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, "STORAGE_UNAVAILABLE", env.Error.Code)
	})
}
