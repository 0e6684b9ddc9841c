package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rbacmaster/internal/config"
	"rbacmaster/internal/model"
	pkgAuth "rbacmaster/internal/pkg/auth"
	"rbacmaster/internal/pkg/utils"
	"rbacmaster/internal/repo/memory"
	systemRepo "rbacmaster/internal/repo/mysql/system"
	"rbacmaster/internal/service/auth"
)

type mwEnv struct {
	mm      *MiddlewareManager
	session *auth.SessionService
	users   *systemRepo.UserRepository
	cfg     *config.SecurityConfig
}

func setupMiddleware(t *testing.T) *mwEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Role{}, &model.Menu{}, &model.UserRole{}, &model.RoleMenu{}))
	for _, r := range []model.Role{
		{RoleName: "系统管理员", RoleCode: model.RoleCodeAdmin},
		{RoleName: "普通用户", RoleCode: model.RoleCodeUser},
	} {
		require.NoError(t, db.Create(&r).Error)
	}

	users := systemRepo.NewUserRepository(db)
	tokens := memory.NewSessionRepository(time.Hour)
	t.Cleanup(func() { _ = tokens.Close() })
	pm := pkgAuth.NewPasswordManager(bcrypt.MinCost)
	jwtManager := pkgAuth.NewJWTManager("middleware_test_secret_key_32_chars", "rbacmaster", "rbacmaster-web", time.Hour, 24*time.Hour)
	session := auth.NewSessionService(users, pm, jwtManager, tokens)

	cfg := &config.SecurityConfig{
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, BurstSize: 2, SkipPaths: []string{"/api/health"}},
		CORS:      config.CORSConfig{Enabled: true, AllowAllOrigins: true},
		Headers:   config.HeadersConfig{FrameDeny: true, ContentTypeNosniff: true},
	}
	mm := NewMiddlewareManager(session, auth.NewRBACService(users), cfg, true)
	t.Cleanup(mm.Close)

	return &mwEnv{mm: mm, session: session, users: users, cfg: cfg}
}

func (e *mwEnv) createUser(t *testing.T, username, roleCode string) (uint, string) {
	t.Helper()
	hash, err := pkgAuth.NewPasswordManager(bcrypt.MinCost).HashPassword("pw")
	require.NoError(t, err)
	u := &model.User{Username: username, PasswordHash: hash, LoginType: model.LoginTypeLocal, IsActive: true}
	require.NoError(t, e.users.CreateUserWithRole(context.Background(), u, roleCode))

	result := e.session.Login(context.Background(), &model.LoginRequest{Username: username, Password: "pw"})
	require.True(t, result.IsSuccess(), result.Message)
	return u.ID, result.Data.Token
}

func serve(engine *gin.Engine, method, path, token string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestGinJWTAuthMiddleware(t *testing.T) {
	env := setupMiddleware(t)
	id, token := env.createUser(t, "alice", model.RoleCodeUser)

	engine := gin.New()
	engine.GET("/me", env.mm.GinJWTAuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": utils.GetCurrentUserID(c), "roles": utils.GetCurrentRoles(c)})
	})

	w := serve(engine, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":`+strconv.FormatUint(uint64(id), 10)+`,"roles":["User"]}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/me", "not-a-jwt", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/me", "", map[string]string{"Authorization": "Basic abc"}).Code)

	claims, err := env.session.ValidateAccessToken(context.Background(), token)
	require.NoError(t, err)
	require.True(t, env.session.Logout(context.Background(), claims, "").IsSuccess())
	w = serve(engine, http.MethodGet, "/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "令牌已注销")
}

func TestGinUserActiveMiddleware(t *testing.T) {
	env := setupMiddleware(t)
	id, token := env.createUser(t, "bob", model.RoleCodeUser)

	engine := gin.New()
	engine.GET("/me", env.mm.GinJWTAuthMiddleware(), env.mm.GinUserActiveMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	engine.GET("/anonymous", env.mm.GinUserActiveMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/me", token, nil).Code)

	// 令牌仍有效，但账户已被禁用
	require.NoError(t, env.users.SetUserActive(context.Background(), id, false))
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/me", token, nil).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/anonymous", "", nil).Code)
}

func TestGinRequireAnyRole(t *testing.T) {
	env := setupMiddleware(t)
	_, adminToken := env.createUser(t, "root", model.RoleCodeAdmin)
	_, userToken := env.createUser(t, "carol", model.RoleCodeUser)

	engine := gin.New()
	engine.GET("/admin", env.mm.GinJWTAuthMiddleware(),
		env.mm.GinRequireAnyRole(model.RoleCodeSuperAdmin, model.RoleCodeAdmin),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/admin", adminToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/admin", userToken, nil).Code)
}

func TestGinRateLimitMiddleware(t *testing.T) {
	env := setupMiddleware(t)

	engine := gin.New()
	engine.Use(env.mm.GinRateLimitMiddleware())
	engine.GET("/api/menu", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	ip := map[string]string{"X-Forwarded-For": "10.1.1.1"}
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/menu", "", ip).Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/menu", "", ip).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodGet, "/api/menu", "", ip).Code)

	// 其他IP与跳过路径不受影响
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/menu", "", map[string]string{"X-Forwarded-For": "10.1.1.2"}).Code)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/health", "", ip).Code)
	}

	env.cfg.RateLimit.Enabled = false
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/menu", "", ip).Code)
}

func TestKeyedLimiter_EvictIdle(t *testing.T) {
	l := NewKeyedLimiter(1, 1, time.Minute)
	defer l.Stop()

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	l.evictIdle(time.Now().Add(2 * time.Minute))
	assert.True(t, l.Allow("a"))

	l.Reset("a")
	assert.True(t, l.Allow("a"))
}

func TestSecurityMiddlewares(t *testing.T) {
	env := setupMiddleware(t)

	engine := gin.New()
	engine.Use(env.mm.GinRecoveryMiddleware(), env.mm.GinRequestIDMiddleware(), env.mm.GinCORSMiddleware(), env.mm.GinSecurityHeadersMiddleware())
	engine.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, utils.GetRequestID(c)) })
	engine.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(engine, http.MethodGet, "/ok", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = serve(engine, http.MethodGet, "/ok", "", map[string]string{"X-Request-ID": "req-123"})
	assert.Equal(t, "req-123", w.Body.String())

	w = serve(engine, http.MethodOptions, "/ok", "", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": "GET",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(engine, http.MethodGet, "/boom", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}
