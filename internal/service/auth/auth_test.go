package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/auth"
	"rbacmaster/internal/repo/memory"
	systemRepo "rbacmaster/internal/repo/mysql/system"
)

type authEnv struct {
	db       *gorm.DB
	users    *systemRepo.UserRepository
	tokens   *memory.SessionRepository
	jwt      *auth.JWTManager
	userSvc  *UserService
	session  *SessionService
	rbac     *RBACService
	password *auth.PasswordManager
}

func setupAuthEnv(t *testing.T, withDefaultRole bool) *authEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Role{}, &model.Menu{}, &model.UserRole{}, &model.RoleMenu{}))

	require.NoError(t, db.Create(&model.Role{RoleName: "系统管理员", RoleCode: model.RoleCodeAdmin}).Error)
	if withDefaultRole {
		require.NoError(t, db.Create(&model.Role{RoleName: "普通用户", RoleCode: model.RoleCodeUser}).Error)
	}

	env := &authEnv{
		db:       db,
		users:    systemRepo.NewUserRepository(db),
		tokens:   memory.NewSessionRepository(time.Hour),
		jwt:      auth.NewJWTManager("test_jwt_secret_key_at_least_32_chars", "rbacmaster-test", "rbacmaster-web", time.Hour, 24*time.Hour),
		password: auth.NewPasswordManager(bcrypt.MinCost),
	}
	t.Cleanup(func() { _ = env.tokens.Close() })
	env.userSvc = NewUserService(env.users, env.password)
	env.session = NewSessionService(env.users, env.password, env.jwt, env.tokens)
	env.rbac = NewRBACService(env.users)
	return env
}

func (e *authEnv) register(t *testing.T, username, password string) uint {
	t.Helper()
	result := e.userSvc.Register(context.Background(), &model.RegisterRequest{Username: username, Password: password})
	require.True(t, result.IsSuccess(), result.Message)
	return result.Data.UserID
}

func TestUserService_Register(t *testing.T) {
	env := setupAuthEnv(t, true)
	ctx := context.Background()

	result := env.userSvc.Register(ctx, &model.RegisterRequest{Username: "alice", Password: "123", RealName: "爱丽丝"})
	require.True(t, result.IsSuccess())
	assert.Equal(t, "注册成功", result.Message)
	assert.Equal(t, model.RoleCodeUser, result.Data.RoleCode)

	stored, err := env.users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsActive)
	assert.NotEqual(t, "123", stored.PasswordHash)

	codes, err := env.users.GetUserRoleCodes(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{model.RoleCodeUser}, codes)

	dup := env.userSvc.Register(ctx, &model.RegisterRequest{Username: "alice", Password: "456"})
	assert.False(t, dup.IsSuccess())
	assert.Equal(t, system.CodeAlreadyExists, dup.Code)
	assert.Equal(t, "用户名已存在", dup.Message)
	assert.ErrorIs(t, dup, system.ErrUsernameAlreadyExists)
}

func TestUserService_RegisterWithoutDefaultRole(t *testing.T) {
	env := setupAuthEnv(t, false)

	result := env.userSvc.Register(context.Background(), &model.RegisterRequest{Username: "bob", Password: "123"})
	assert.Equal(t, system.CodeRoleNotFound, result.Code)
	assert.ErrorIs(t, result, system.ErrRoleNotFound)

	exists, err := env.users.UsernameExists(context.Background(), "bob")
	require.NoError(t, err)
	assert.False(t, exists)
}

// recordingInvalidator 记录被清除缓存的用户
type recordingInvalidator struct {
	users []uint
	err   error
}

func (r *recordingInvalidator) InvalidateUser(_ context.Context, userID uint) error {
	r.users = append(r.users, userID)
	return r.err
}

func TestUserService_AssignRole(t *testing.T) {
	env := setupAuthEnv(t, true)
	ctx := context.Background()
	inv := &recordingInvalidator{}
	env.userSvc.SetMenuCacheInvalidator(inv)
	userID := env.register(t, "bob", "123")

	result := env.userSvc.AssignRole(ctx, userID, " "+model.RoleCodeAdmin+" ")
	require.True(t, result.IsSuccess(), result.Message)
	assert.Equal(t, userID, result.Data.UserID)
	assert.Equal(t, []string{model.RoleCodeAdmin, model.RoleCodeUser}, result.Data.Roles)
	assert.Equal(t, []uint{userID}, inv.users)

	// 重复分配幂等，仍然清除缓存
	again := env.userSvc.AssignRole(ctx, userID, model.RoleCodeAdmin)
	require.True(t, again.IsSuccess())
	assert.Equal(t, result.Data.Roles, again.Data.Roles)
	assert.Len(t, inv.users, 2)

	// 失败时不清除缓存
	missingRole := env.userSvc.AssignRole(ctx, userID, "Missing")
	assert.Equal(t, system.CodeRoleNotFound, missingRole.Code)
	assert.ErrorIs(t, missingRole, system.ErrRoleNotFound)
	missingUser := env.userSvc.AssignRole(ctx, 999, model.RoleCodeAdmin)
	assert.Equal(t, system.CodeUserNotFound, missingUser.Code)
	empty := env.userSvc.AssignRole(ctx, userID, "  ")
	assert.Equal(t, system.CodeValidationError, empty.Code)
	assert.Len(t, inv.users, 2)

	// 缓存清除失败不影响分配结果
	inv.err = errors.New("redis: connection refused")
	require.True(t, env.userSvc.AssignRole(ctx, userID, model.RoleCodeUser).IsSuccess())
}

func TestUserService_AssignRoleWithoutInvalidator(t *testing.T) {
	env := setupAuthEnv(t, true)
	userID := env.register(t, "carol", "123")

	result := env.userSvc.AssignRole(context.Background(), userID, model.RoleCodeAdmin)
	require.True(t, result.IsSuccess())
	assert.Equal(t, []string{model.RoleCodeAdmin, model.RoleCodeUser}, result.Data.Roles)
}

func TestSessionService_Login(t *testing.T) {
	env := setupAuthEnv(t, true)
	ctx := context.Background()
	userID := env.register(t, "alice", "123")

	result := env.session.Login(ctx, &model.LoginRequest{Username: "alice", Password: "123"})
	require.True(t, result.IsSuccess())
	assert.Equal(t, "登录成功", result.Message)
	assert.Equal(t, userID, result.Data.UserID)
	assert.Equal(t, "Bearer", result.Data.TokenType)
	assert.Equal(t, []string{model.RoleCodeUser}, result.Data.Roles)
	assert.Equal(t, int64(3600), result.Data.ExpiresIn)

	claims, err := env.session.ValidateAccessToken(ctx, result.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	wrong := env.session.Login(ctx, &model.LoginRequest{Username: "alice", Password: "1234"})
	assert.Equal(t, system.CodeInvalidCredentials, wrong.Code)
	assert.Equal(t, "密码错误", wrong.Message)

	missing := env.session.Login(ctx, &model.LoginRequest{Username: "nobody", Password: "123"})
	assert.Equal(t, system.CodeUserNotFound, missing.Code)
	assert.Equal(t, "用户不存在或已禁用", missing.Message)
}

func TestSessionService_LoginDisabledUser(t *testing.T) {
	env := setupAuthEnv(t, true)
	userID := env.register(t, "guest2", "123")
	require.NoError(t, env.users.SetUserActive(context.Background(), userID, false))

	result := env.session.Login(context.Background(), &model.LoginRequest{Username: "guest2", Password: "123"})
	assert.Equal(t, system.CodeUserNotFound, result.Code)
	assert.ErrorIs(t, result, system.ErrUserDisabled)
}

func TestSessionService_RefreshRotates(t *testing.T) {
	env := setupAuthEnv(t, true)
	ctx := context.Background()
	userID := env.register(t, "alice", "123")

	login := env.session.Login(ctx, &model.LoginRequest{Username: "alice", Password: "123"})
	require.True(t, login.IsSuccess())

	refreshed := env.session.Refresh(ctx, login.Data.RefreshToken)
	require.True(t, refreshed.IsSuccess())
	assert.NotEqual(t, login.Data.RefreshToken, refreshed.Data.RefreshToken)
	assert.Equal(t, userID, refreshed.Data.UserID)

	// 旧刷新令牌只能使用一次
	again := env.session.Refresh(ctx, login.Data.RefreshToken)
	assert.Equal(t, system.CodeInvalidToken, again.Code)
	assert.ErrorIs(t, again, system.ErrRefreshInvalid)

	// 禁用后刷新失败
	require.NoError(t, env.users.SetUserActive(ctx, userID, false))
	disabled := env.session.Refresh(ctx, refreshed.Data.RefreshToken)
	assert.Equal(t, system.CodeAccountDisabled, disabled.Code)
}

func TestSessionService_Logout(t *testing.T) {
	env := setupAuthEnv(t, true)
	ctx := context.Background()
	env.register(t, "alice", "123")

	login := env.session.Login(ctx, &model.LoginRequest{Username: "alice", Password: "123"})
	require.True(t, login.IsSuccess())
	claims, err := env.session.ValidateAccessToken(ctx, login.Data.Token)
	require.NoError(t, err)

	result := env.session.Logout(ctx, claims, login.Data.RefreshToken)
	require.True(t, result.IsSuccess())

	_, err = env.session.ValidateAccessToken(ctx, login.Data.Token)
	assert.ErrorIs(t, err, system.ErrTokenRevoked)

	refresh := env.session.Refresh(ctx, login.Data.RefreshToken)
	assert.Equal(t, system.CodeInvalidToken, refresh.Code)

	assert.Equal(t, system.CodeUnauthorized, env.session.Logout(ctx, nil, "").Code)
}

func TestRBACService(t *testing.T) {
	env := setupAuthEnv(t, true)
	ctx := context.Background()
	userID := env.register(t, "alice", "123")

	ok, err := env.rbac.CheckAnyRole(ctx, userID, []string{model.RoleCodeSuperAdmin, model.RoleCodeAdmin})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.rbac.CheckRole(ctx, userID, model.RoleCodeUser)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = env.rbac.CheckAnyRole(ctx, 0, []string{model.RoleCodeUser})
	assert.Error(t, err)
	_, err = env.rbac.CheckAnyRole(ctx, userID, nil)
	assert.Error(t, err)

	active, err := env.rbac.IsUserActive(ctx, userID)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = env.rbac.IsUserActive(ctx, 0)
	require.NoError(t, err)
	assert.False(t, active)
}
