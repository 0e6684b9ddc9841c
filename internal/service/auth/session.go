/*
 * @description: 会话管理服务
 * @func:
 * 1.登录
 * 2.注销
 * 3.刷新令牌
 * 4.令牌撤销检查
 */
package auth

import (
	"context"
	"time"

	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/auth"
	"rbacmaster/internal/pkg/logger"
)

// TokenStore 刷新令牌与撤销记录存储
type TokenStore interface {
	StoreRefreshToken(ctx context.Context, token string, userID uint, expiration time.Duration) error
	ConsumeRefreshToken(ctx context.Context, token string) (uint, bool, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	RevokeToken(ctx context.Context, tokenID string, expiration time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// 令牌类型
const tokenTypeBearer = "Bearer"

// SessionService 会话管理服务
type SessionService struct {
	users           UserStore
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	tokens          TokenStore
}

// NewSessionService 创建会话服务实例
func NewSessionService(users UserStore, passwordManager *auth.PasswordManager, jwtManager *auth.JWTManager, tokens TokenStore) *SessionService {
	return &SessionService{
		users:           users,
		passwordManager: passwordManager,
		jwtManager:      jwtManager,
		tokens:          tokens,
	}
}

// Login 用户登录，仅启用的用户可以登录
func (s *SessionService) Login(ctx context.Context, req *model.LoginRequest) system.Result[*model.LoginResponse] {
	if req == nil {
		return system.Failure[*model.LoginResponse](system.CodeValidationError, "登录请求不能为空")
	}

	user, err := s.users.GetActiveUserByUsername(ctx, req.Username)
	if err != nil {
		return system.FailureWithError[*model.LoginResponse](system.CodeDatabaseError, "登录失败", err)
	}
	if user == nil {
		logger.LogBusinessOperation("user_login", 0, req.Username, "", "", "failed", system.ErrUserDisabled.Error(), nil)
		return system.FailureWithError[*model.LoginResponse](system.CodeUserNotFound, system.ErrUserDisabled.Error(), system.ErrUserDisabled)
	}

	// 验证密码
	isValid, err := s.passwordManager.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		logger.LogError(err, "", user.ID, "", "user_login", "POST", map[string]interface{}{
			"operation": "login",
			"username":  user.Username,
			"timestamp": logger.NowFormatted(),
		})
		return system.FailureWithError[*model.LoginResponse](system.CodeInternalError, "登录失败", err)
	}
	if !isValid {
		logger.LogBusinessOperation("user_login", user.ID, user.Username, "", "", "failed", system.ErrInvalidCredentials.Error(), nil)
		return system.FailureWithError[*model.LoginResponse](system.CodeInvalidCredentials, system.ErrInvalidCredentials.Error(), system.ErrInvalidCredentials)
	}

	resp, result, ok := s.issueTokens(ctx, user)
	if !ok {
		return result
	}

	logger.LogBusinessOperation("user_login", user.ID, user.Username, "", "", "success", "登录成功", map[string]interface{}{
		"roles":     resp.Roles,
		"timestamp": logger.NowFormatted(),
	})
	return system.Success(resp, "登录成功")
}

// Refresh 使用刷新令牌换取新的令牌对，旧刷新令牌立即失效
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) system.Result[*model.LoginResponse] {
	userID, found, err := s.tokens.ConsumeRefreshToken(ctx, refreshToken)
	if err != nil {
		return system.FailureWithError[*model.LoginResponse](system.CodeExternalServiceError, "刷新令牌失败", err)
	}
	if !found {
		return system.FailureWithError[*model.LoginResponse](system.CodeInvalidToken, system.ErrRefreshInvalid.Error(), system.ErrRefreshInvalid)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return system.FailureWithError[*model.LoginResponse](system.CodeDatabaseError, "刷新令牌失败", err)
	}
	if user == nil || !user.IsActive {
		logger.LogBusinessOperation("token_refresh", userID, "", "", "", "failed", system.ErrUserDisabled.Error(), nil)
		return system.FailureWithError[*model.LoginResponse](system.CodeAccountDisabled, system.ErrUserDisabled.Error(), system.ErrUserDisabled)
	}

	resp, result, ok := s.issueTokens(ctx, user)
	if !ok {
		return result
	}
	return system.Success(resp, "刷新令牌成功")
}

// Logout 注销：撤销访问令牌直到其过期，并删除刷新令牌
func (s *SessionService) Logout(ctx context.Context, claims *auth.JWTClaims, refreshToken string) system.Result[bool] {
	if claims == nil {
		return system.FailureWithError[bool](system.CodeUnauthorized, system.ErrUnauthorized.Error(), system.ErrUnauthorized)
	}

	if err := s.tokens.RevokeToken(ctx, claims.ID, claims.Remaining(time.Now())); err != nil {
		logger.LogError(err, "", claims.UserID, "", "user_logout", "POST", map[string]interface{}{
			"operation": "logout",
			"timestamp": logger.NowFormatted(),
		})
		return system.FailureWithError[bool](system.CodeExternalServiceError, "注销失败", err)
	}
	if refreshToken != "" {
		if err := s.tokens.DeleteRefreshToken(ctx, refreshToken); err != nil {
			return system.FailureWithError[bool](system.CodeExternalServiceError, "注销失败", err)
		}
	}

	logger.LogBusinessOperation("user_logout", claims.UserID, claims.Username, "", "", "success", "注销成功", nil)
	return system.Success(true, "注销成功")
}

// ValidateAccessToken 校验访问令牌签名、有效期与撤销状态
func (s *SessionService) ValidateAccessToken(ctx context.Context, token string) (*auth.JWTClaims, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.tokens.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, system.ErrTokenRevoked
	}
	return claims, nil
}

// issueTokens 生成访问令牌与刷新令牌；失败时 ok 为 false 并返回失败结果
func (s *SessionService) issueTokens(ctx context.Context, user *model.User) (*model.LoginResponse, system.Result[*model.LoginResponse], bool) {
	roles, err := s.users.GetUserRoleCodes(ctx, user.ID)
	if err != nil {
		return nil, system.FailureWithError[*model.LoginResponse](system.CodeDatabaseError, "生成令牌失败", err), false
	}
	if roles == nil {
		roles = []string{}
	}

	accessToken, _, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, roles)
	if err != nil {
		return nil, system.FailureWithError[*model.LoginResponse](system.CodeInternalError, "生成令牌失败", err), false
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken()
	if err != nil {
		return nil, system.FailureWithError[*model.LoginResponse](system.CodeInternalError, "生成令牌失败", err), false
	}
	if err := s.tokens.StoreRefreshToken(ctx, refreshToken, user.ID, s.jwtManager.RefreshTokenTTL()); err != nil {
		return nil, system.FailureWithError[*model.LoginResponse](system.CodeExternalServiceError, "生成令牌失败", err), false
	}

	return &model.LoginResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.AccessTokenTTL().Seconds()),
		TokenType:    tokenTypeBearer,
		UserID:       user.ID,
		Username:     user.Username,
		Roles:        roles,
	}, system.Result[*model.LoginResponse]{}, true
}
