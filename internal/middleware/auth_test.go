package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"mrstrict/internal/middleware"
	"mrstrict/internal/service"
	"mrstrict/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	mockTokens := new(mocks.MockTokenService)

	userID := uuid.New()
	claims := &service.Claims{UserID: userID, Email: "teacher@school.test"}
	mockTokens.On("ValidateToken", "valid-token").Return(claims, nil)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(mockTokens))
	r.GET("/test", func(c *gin.Context) {
		uid, _ := middleware.GetUserID(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id": uid,
			"email":   middleware.GetEmail(c),
		})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer valid-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, userID.String(), resp["user_id"])
	assert.Equal(t, "teacher@school.test", resp["email"])
	mockTokens.AssertExpectations(t)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	mockTokens := new(mocks.MockTokenService)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(mockTokens))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockTokens.AssertNotCalled(t, "ValidateToken")
}

func TestAuthMiddleware_NotBearer(t *testing.T) {
	mockTokens := new(mocks.MockTokenService)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(mockTokens))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	mockTokens := new(mocks.MockTokenService)
	mockTokens.On("ValidateToken", "bad-token").Return(nil, errors.New("token expired"))

	r := gin.New()
	r.Use(middleware.AuthMiddleware(mockTokens))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer bad-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, false, resp["success"])
	mockTokens.AssertExpectations(t)
}

func TestGetUserID_Missing(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, err := middleware.GetUserID(c)
	assert.Error(t, err)
	assert.Equal(t, "", middleware.GetEmail(c))
}
