package auth

import (
	"net/http"

	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/logger"
	"rbacmaster/internal/service/auth"

	"github.com/gin-gonic/gin"
)

// RegisterHandler 注册接口处理器
type RegisterHandler struct {
	userService *auth.UserService
}

// NewRegisterHandler 创建注册处理器实例
func NewRegisterHandler(userService *auth.UserService) *RegisterHandler {
	return &RegisterHandler{
		userService: userService,
	}
}

// GinRegister 用户注册，新用户默认分配 User 角色
// POST /api/auth/register
func (h *RegisterHandler) GinRegister(c *gin.Context) {
	meta := newRequestMeta(c)

	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, meta, "register", err)
		return
	}

	result := h.userService.Register(c.Request.Context(), &req)
	if !result.IsSuccess() {
		if result.Code.IsSystemError() {
			logger.LogBusinessError(result, meta.requestID, 0, meta.clientIP, meta.pathUrl, meta.httpMethod, map[string]interface{}{
				"operation": "register",
				"username":  req.Username,
			})
		} else {
			logger.LogBusinessOperation("register", 0, req.Username, meta.clientIP, meta.requestID, "failed", result.Message, map[string]interface{}{
				"operation":   "register",
				"result_code": result.Code,
			})
		}
		c.JSON(system.FromResult(result, 0))
		return
	}

	logger.LogBusinessOperation("register", result.Data.UserID, req.Username, meta.clientIP, meta.requestID, "success", result.Message, map[string]interface{}{
		"operation": "register",
		"role_code": result.Data.RoleCode,
	})
	c.JSON(system.FromResult(result, http.StatusCreated))
}
