package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"formulab/internal/config"
	"formulab/internal/middleware"
	"formulab/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(authSvc service.AuthService) *gin.Engine {
	r := gin.New()
	r.Use(middleware.AuthMiddleware(authSvc))
	r.GET("/protected", func(c *gin.Context) {
		username, _ := c.Get(middleware.ContextKeyUsername)
		c.JSON(http.StatusOK, gin.H{"username": username})
	})
	return r
}

func configuredAuth(t *testing.T) service.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pintura123"), bcrypt.MinCost)
	require.NoError(t, err)
	return service.NewAuthService(
		config.AuthConfig{Username: "operador", PasswordHash: string(hash)},
		config.JWTConfig{Secret: "test-secret", AccessTokenExpiry: time.Hour, Issuer: "formulab"},
	)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := newRouter(configuredAuth(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_BadToken(t *testing.T) {
	r := newRouter(configuredAuth(t))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	svc := configuredAuth(t)
	r := newRouter(svc)

	token, err := svc.Login(context.Background(), service.LoginInput{Username: "operador", Password: "pintura123"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "operador")
}

func TestAuthMiddleware_OpenWhenUnconfigured(t *testing.T) {
	svc := service.NewAuthService(config.AuthConfig{}, config.JWTConfig{Secret: "s"})
	r := newRouter(svc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
