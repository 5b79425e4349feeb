package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/placement-backend/internal/models"
	"github.com/talentbridge/placement-backend/pkg/jwt"
)

func setupAuthRouter(jwtService *jwt.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware(jwtService))
	router.GET("/protected", func(c *gin.Context) {
		userCtx, _ := GetUserContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userCtx.UserID, "roles": userCtx.Roles})
	})
	return router
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := jwt.NewService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	router := setupAuthRouter(jwtService)

	userID := uuid.New()
	token, err := jwtService.GenerateAccessToken(userID, "agency@example.com", []string{models.RoleAgency})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body["user_id"])
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	jwtService := jwt.NewService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	router := setupAuthRouter(jwtService)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_AUTH_HEADER")
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	jwtService := jwt.NewService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	router := setupAuthRouter(jwtService)

	for _, header := range []string{"Basic abc123", "Bearer", "token-without-scheme"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q should be rejected", header)
		assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	expired := jwt.NewService("access-secret", "refresh-secret", -time.Minute, 24*time.Hour)
	router := setupAuthRouter(expired)

	token, err := expired.GenerateAccessToken(uuid.New(), "agency@example.com", []string{models.RoleAgency})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestAuthMiddleware_RefreshTokenRejectedAsAccess(t *testing.T) {
	jwtService := jwt.NewService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	router := setupAuthRouter(jwtService)

	token, err := jwtService.GenerateRefreshToken(uuid.New(), "agency@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	issuer := jwt.NewService("other-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	verifier := jwt.NewService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	router := setupAuthRouter(verifier)

	token, err := issuer.GenerateAccessToken(uuid.New(), "agency@example.com", []string{models.RoleAgency})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(userRoles []string, required ...string) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(UserContextKey, UserContext{
				UserID: uuid.New(),
				Email:  "user@example.com",
				Roles:  userRoles,
			})
			c.Next()
		})
		router.Use(RequireRole(required...))
		router.GET("/resource", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
		return router
	}

	t.Run("matching role passes", func(t *testing.T) {
		router := newRouter([]string{models.RoleAgency}, models.RoleAgency)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("any of several roles passes", func(t *testing.T) {
		router := newRouter([]string{models.RoleClient}, models.RoleAdmin, models.RoleClient)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing role forbidden", func(t *testing.T) {
		router := newRouter([]string{models.RoleAgency}, models.RoleAdmin)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "INSUFFICIENT_PERMISSIONS")
	})

	t.Run("no user context unauthorized", func(t *testing.T) {
		router := gin.New()
		router.Use(RequireRole(models.RoleAdmin))
		router.GET("/resource", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
