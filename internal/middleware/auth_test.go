package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"learnx_backend/internal/config"
	"learnx_backend/internal/model"
	"learnx_backend/internal/util"
	"learnx_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "middleware-test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return cfg
}

func issueToken(t *testing.T, cfg *config.Config, role model.UserRole) string {
	t.Helper()
	user := &model.User{Role: role, Email: "mw@test.local"}
	user.ID = 7
	token, err := util.GenerateJWT(user, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	require.NoError(t, err)
	return token
}

func newAuthRouter(cfg *config.Config, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": claims.UserID, "role": claims.Role})
	})
	router.GET("/protected", handlers...)
	return router
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	router := newAuthRouter(cfg)

	t.Run("missing token", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("bearer header accepted", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, cfg, model.RoleLearner))
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("query token accepted for websocket handshakes", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected?token="+issueToken(t, cfg, model.RoleLearner), nil)
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestRoleMiddleware(t *testing.T) {
	cfg := testConfig()
	router := newAuthRouter(cfg, RoleMiddleware(model.RoleCreator))

	request := func(role model.UserRole) int {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, cfg, role))
		router.ServeHTTP(recorder, req)
		return recorder.Code
	}

	assert.Equal(t, http.StatusOK, request(model.RoleCreator))
	assert.Equal(t, http.StatusForbidden, request(model.RoleLearner))
	// 管理员拥有全部权限
	assert.Equal(t, http.StatusOK, request(model.RoleAdmin))
}

func TestTryAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	router := gin.New()
	router.GET("/open", TryAuthMiddleware(cfg), func(c *gin.Context) {
		if claims := util.GetUserFromContext(c); claims != nil {
			c.JSON(http.StatusOK, gin.H{"userId": claims.UserID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": nil})
	})

	t.Run("guest passes through", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("invalid token treated as guest", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer junk")
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("valid token attaches claims", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, cfg, model.RoleLearner))
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"userId":7`)
	})
}
