package auth

import (
	"errors"
	"io"

	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
	pkgAuth "rbacmaster/internal/pkg/auth"
	"rbacmaster/internal/pkg/logger"
	"rbacmaster/internal/pkg/utils"
	"rbacmaster/internal/service/auth"

	"github.com/gin-gonic/gin"
)

// LogoutHandler 注销处理器
type LogoutHandler struct {
	sessionService *auth.SessionService
}

// NewLogoutHandler 创建注销处理器实例
func NewLogoutHandler(sessionService *auth.SessionService) *LogoutHandler {
	return &LogoutHandler{
		sessionService: sessionService,
	}
}

// GinLogout 注销当前访问令牌，请求体中携带刷新令牌时一并作废
// POST /api/auth/logout，需经过 JWT 中间件
func (h *LogoutHandler) GinLogout(c *gin.Context) {
	meta := newRequestMeta(c)

	// 请求体可以为空
	var req model.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindFailed(c, meta, "logout", err)
		return
	}

	var claims *pkgAuth.JWTClaims
	if v, ok := c.Get(utils.GinKeyClaims); ok {
		claims, _ = v.(*pkgAuth.JWTClaims)
	}

	result := h.sessionService.Logout(c.Request.Context(), claims, req.RefreshToken)
	userID := utils.GetCurrentUserID(c)
	username := utils.GetCurrentUsername(c)
	if !result.IsSuccess() {
		logger.LogBusinessError(result, meta.requestID, userID, meta.clientIP, meta.pathUrl, meta.httpMethod, map[string]interface{}{
			"operation":   "logout",
			"result_code": result.Code,
		})
		c.JSON(system.FromResult(result, 0))
		return
	}

	logger.LogBusinessOperation("logout", userID, username, meta.clientIP, meta.requestID, "success", result.Message, map[string]interface{}{
		"operation": "logout",
	})
	c.JSON(system.FromResult(result, 0))
}
