package auth

import (
	"errors"
	"net/http"
	"strconv"

	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/logger"
	"rbacmaster/internal/pkg/utils"
	"rbacmaster/internal/service/auth"

	"github.com/gin-gonic/gin"
)

// AssignRoleHandler 角色分配接口处理器
type AssignRoleHandler struct {
	userService *auth.UserService
}

// NewAssignRoleHandler 创建角色分配处理器实例
func NewAssignRoleHandler(userService *auth.UserService) *AssignRoleHandler {
	return &AssignRoleHandler{
		userService: userService,
	}
}

// GinAssignRole 为指定用户追加角色，仅 SuperAdmin/Admin 可访问
// POST /api/users/:userId/roles
func (h *AssignRoleHandler) GinAssignRole(c *gin.Context) {
	meta := newRequestMeta(c)
	operatorID := utils.GetCurrentUserID(c)

	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil || targetID == 0 {
		if err == nil {
			err = errors.New("user id must be positive")
		}
		logger.LogBusinessError(err, meta.requestID, operatorID, meta.clientIP, meta.pathUrl, meta.httpMethod, map[string]interface{}{
			"operation": "assign_role",
			"user_id":   c.Param("userId"),
		})
		c.JSON(http.StatusBadRequest, system.APIResponse{
			Code:       http.StatusBadRequest,
			Status:     "failed",
			ResultCode: system.CodeValidationError,
			Message:    "用户ID格式错误",
			Error:      err.Error(),
		})
		return
	}

	var req model.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, meta, "assign_role", err)
		return
	}

	result := h.userService.AssignRole(c.Request.Context(), uint(targetID), req.RoleCode)
	if !result.IsSuccess() {
		if result.Code.IsSystemError() {
			logger.LogBusinessError(result, meta.requestID, operatorID, meta.clientIP, meta.pathUrl, meta.httpMethod, map[string]interface{}{
				"operation":      "assign_role",
				"target_user_id": targetID,
			})
		} else {
			logger.LogBusinessOperation("assign_role", operatorID, utils.GetCurrentUsername(c), meta.clientIP, meta.requestID, "failed", result.Message, map[string]interface{}{
				"operation":      "assign_role",
				"target_user_id": targetID,
				"result_code":    result.Code,
			})
		}
		c.JSON(system.FromResult(result, 0))
		return
	}

	logger.LogBusinessOperation("assign_role", operatorID, utils.GetCurrentUsername(c), meta.clientIP, meta.requestID, "success", result.Message, map[string]interface{}{
		"operation":      "assign_role",
		"target_user_id": targetID,
		"role_code":      req.RoleCode,
	})
	c.JSON(system.FromResult(result, http.StatusOK))
}
