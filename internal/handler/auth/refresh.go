package auth

import (
	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/logger"
	"rbacmaster/internal/service/auth"

	"github.com/gin-gonic/gin"
)

// RefreshHandler 刷新令牌处理器
type RefreshHandler struct {
	sessionService *auth.SessionService
}

// NewRefreshHandler 创建刷新令牌处理器实例
func NewRefreshHandler(sessionService *auth.SessionService) *RefreshHandler {
	return &RefreshHandler{
		sessionService: sessionService,
	}
}

// GinRefreshToken 使用刷新令牌换取新的令牌对，旧刷新令牌立即失效
// POST /api/auth/refresh
func (h *RefreshHandler) GinRefreshToken(c *gin.Context) {
	meta := newRequestMeta(c)

	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, meta, "refresh_token", err)
		return
	}

	result := h.sessionService.Refresh(c.Request.Context(), req.RefreshToken)
	if !result.IsSuccess() {
		logger.LogBusinessOperation("refresh_token", 0, "", meta.clientIP, meta.requestID, "failed", result.Message, map[string]interface{}{
			"operation":   "refresh_token",
			"result_code": result.Code,
		})
		c.JSON(system.FromResult(result, 0))
		return
	}

	logger.LogBusinessOperation("refresh_token", result.Data.UserID, result.Data.Username, meta.clientIP, meta.requestID, "success", result.Message, map[string]interface{}{
		"operation": "refresh_token",
	})
	c.JSON(system.FromResult(result, 0))
}
