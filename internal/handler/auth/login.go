package auth

import (
	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/logger"
	"rbacmaster/internal/service/auth"

	"github.com/gin-gonic/gin"
)

// LoginHandler 登录接口处理器
type LoginHandler struct {
	sessionService *auth.SessionService
}

// NewLoginHandler 创建登录处理器实例
func NewLoginHandler(sessionService *auth.SessionService) *LoginHandler {
	return &LoginHandler{
		sessionService: sessionService,
	}
}

// GinLogin 用户登录
// POST /api/auth/login
// 成功返回访问令牌和刷新令牌；用户不存在或已禁用返回404，密码错误返回401
func (h *LoginHandler) GinLogin(c *gin.Context) {
	meta := newRequestMeta(c)

	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, meta, "login", err)
		return
	}

	result := h.sessionService.Login(c.Request.Context(), &req)
	if !result.IsSuccess() {
		logger.LogBusinessOperation("login", 0, req.Username, meta.clientIP, meta.requestID, "failed", result.Message, map[string]interface{}{
			"operation":   "login",
			"result_code": result.Code,
			"user_agent":  meta.userAgent,
		})
		c.JSON(system.FromResult(result, 0))
		return
	}

	logger.LogBusinessOperation("login", result.Data.UserID, req.Username, meta.clientIP, meta.requestID, "success", result.Message, map[string]interface{}{
		"operation":  "login",
		"roles":      result.Data.Roles,
		"user_agent": meta.userAgent,
	})
	c.JSON(system.FromResult(result, 0))
}
