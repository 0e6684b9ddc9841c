/**
 * 中间件:认证相关中间件
 * @description: 定义认证相关中间件
 * @func:
 *   - GinJWTAuthMiddleware: Gin JWT认证中间件(拒绝已注销的令牌)
 *   - GinUserActiveMiddleware: 检查用户是否启用
 *   - GinRequireAnyRole: 检查用户是否具有任意一个角色
 *   - extractTokenFromGinHeader: 从Gin请求头中提取JWT令牌
 */
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/logger"
	"rbacmaster/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// =============================================================================
// JWT认证相关中间件
// =============================================================================

// GinJWTAuthMiddleware Gin JWT认证中间件
// 验证请求头中的JWT令牌，并将用户信息存储到Gin上下文中
// 使用方式: router.Use(middlewareManager.GinJWTAuthMiddleware())
func (m *MiddlewareManager) GinJWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := utils.GetClientIP(c)
		XRequestID := utils.GetRequestID(c)
		userAgent := c.GetHeader("User-Agent")

		accessToken, err := m.extractTokenFromGinHeader(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, system.APIResponse{
				Code:       http.StatusUnauthorized,
				Status:     "failed",
				ResultCode: system.CodeUnauthorized,
				Message:    "missing or invalid authorization header",
				Error:      err.Error(),
			})
			c.Abort()
			return
		}

		claims, err := m.sessionService.ValidateAccessToken(c.Request.Context(), accessToken)
		if err != nil {
			logger.LogError(err, XRequestID, 0, clientIP, c.Request.URL.Path, c.Request.Method, map[string]interface{}{
				"operation":    "token_validation",
				"token_prefix": tokenPrefix(accessToken),
				"user_agent":   userAgent,
			})

			// 令牌存储不可用时不能确认撤销状态，按服务不可用处理
			if !errors.Is(err, system.ErrTokenExpired) && !errors.Is(err, system.ErrTokenInvalid) && !errors.Is(err, system.ErrTokenRevoked) {
				c.JSON(http.StatusServiceUnavailable, system.APIResponse{
					Code:       http.StatusServiceUnavailable,
					Status:     "failed",
					ResultCode: system.CodeExternalServiceError,
					Message:    "token validation unavailable",
				})
				c.Abort()
				return
			}

			c.JSON(http.StatusUnauthorized, system.APIResponse{
				Code:       http.StatusUnauthorized,
				Status:     "failed",
				ResultCode: system.CodeInvalidToken,
				Message:    "invalid or expired token",
				Error:      err.Error(),
			})
			c.Abort()
			return
		}

		c.Set(utils.GinKeyUserID, claims.UserID)
		c.Set(utils.GinKeyUsername, claims.Username)
		c.Set(utils.GinKeyRoles, claims.Roles)
		c.Set(utils.GinKeyClaims, claims)

		c.Next()
	}
}

// =============================================================================
// 用户状态验证中间件
// =============================================================================

// GinUserActiveMiddleware Gin用户启用状态中间件
// 令牌签发后被禁用的账户在这里被拦截
// 使用方式: router.Use(middlewareManager.GinUserActiveMiddleware())
func (m *MiddlewareManager) GinUserActiveMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := m.currentUserID(c)
		if !ok {
			return
		}

		isActive, err := m.rbacService.IsUserActive(c.Request.Context(), userID)
		if err != nil {
			logger.LogError(err, utils.GetRequestID(c), userID, utils.GetClientIP(c), c.Request.URL.Path, c.Request.Method, map[string]interface{}{
				"operation": "check_user_active",
			})
			c.JSON(http.StatusInternalServerError, system.APIResponse{
				Code:       http.StatusInternalServerError,
				Status:     "failed",
				ResultCode: system.CodeDatabaseError,
				Message:    "failed to check user status",
			})
			c.Abort()
			return
		}

		if !isActive {
			c.JSON(http.StatusForbidden, system.APIResponse{
				Code:       http.StatusForbidden,
				Status:     "failed",
				ResultCode: system.CodeAccountDisabled,
				Message:    "user account is inactive",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// =============================================================================
// 角色验证中间件
// =============================================================================

// GinRequireAnyRole Gin任意角色验证中间件
// 用户只需要拥有其中任意一个角色即可通过验证，角色以数据库中的当前分配为准
// 使用方式: router.Use(middlewareManager.GinRequireAnyRole("SuperAdmin", "Admin"))
func (m *MiddlewareManager) GinRequireAnyRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := m.currentUserID(c)
		if !ok {
			return
		}

		hasAnyRole, err := m.rbacService.CheckAnyRole(c.Request.Context(), userID, roles)
		if err != nil {
			logger.LogError(err, utils.GetRequestID(c), userID, utils.GetClientIP(c), c.Request.URL.Path, c.Request.Method, map[string]interface{}{
				"operation": "check_role",
				"roles":     roles,
			})
			c.JSON(http.StatusInternalServerError, system.APIResponse{
				Code:       http.StatusInternalServerError,
				Status:     "failed",
				ResultCode: system.CodeDatabaseError,
				Message:    "failed to check role",
			})
			c.Abort()
			return
		}

		if !hasAnyRole {
			logger.LogAuditOperation(userID, utils.GetCurrentUsername(c), "access_denied", c.Request.URL.Path, "failed",
				utils.GetClientIP(c), c.GetHeader("User-Agent"), utils.GetRequestID(c), map[string]interface{}{
					"required_roles": roles,
				})
			c.JSON(http.StatusForbidden, system.APIResponse{
				Code:       http.StatusForbidden,
				Status:     "failed",
				ResultCode: system.CodePermissionDenied,
				Message:    "insufficient role privileges",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// =============================================================================
// 辅助方法
// =============================================================================

// currentUserID 读取 JWT 中间件写入的用户ID，不存在时直接写入401并中止
func (m *MiddlewareManager) currentUserID(c *gin.Context) (uint, bool) {
	userID := utils.GetCurrentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, system.APIResponse{
			Code:       http.StatusUnauthorized,
			Status:     "failed",
			ResultCode: system.CodeUnauthorized,
			Message:    "user not authenticated",
		})
		c.Abort()
		return 0, false
	}
	return userID, true
}

// extractTokenFromGinHeader 从Gin请求头中提取访问令牌
func (m *MiddlewareManager) extractTokenFromGinHeader(c *gin.Context) (string, error) {
	authorization := c.GetHeader("Authorization")
	if authorization == "" {
		return "", system.NewValidationError("authorization", "authorization header is required")
	}

	if !strings.HasPrefix(authorization, "Bearer ") {
		return "", system.NewValidationError("authorization", "authorization header must start with 'Bearer '")
	}

	token := strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))
	if token == "" {
		return "", system.NewValidationError("authorization", "access token cannot be empty")
	}

	return token, nil
}

func tokenPrefix(token string) string {
	if len(token) <= 10 {
		return token
	}
	return token[:10] + "..."
}
