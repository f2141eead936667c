package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/workhub/marketplace-backend/internal/models"
	"github.com/workhub/marketplace-backend/internal/service"
)

func setupProtectedRouter(tokens *service.TokenManager, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", AuthMiddleware(tokens))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(ContextUserIDKey)})
	})
	return r
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	tokens := service.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	r := setupProtectedRouter(tokens)

	req, _ := http.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	tokens := service.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	r := setupProtectedRouter(tokens)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer мусор")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := service.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	r := setupProtectedRouter(tokens)

	pair, _, _, err := tokens.GeneratePair(&models.User{ID: uuid.New(), Role: models.RoleClient})
	assert.NoError(t, err)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_ForbidsWrongRole(t *testing.T) {
	tokens := service.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	r := setupProtectedRouter(tokens, models.RoleAdmin)

	pair, _, _, err := tokens.GeneratePair(&models.User{ID: uuid.New(), Role: models.RoleClient})
	assert.NoError(t, err)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_AllowsListedRole(t *testing.T) {
	tokens := service.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	r := setupProtectedRouter(tokens, models.RoleAdmin)

	pair, _, _, err := tokens.GeneratePair(&models.User{ID: uuid.New(), Role: models.RoleAdmin})
	assert.NoError(t, err)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
