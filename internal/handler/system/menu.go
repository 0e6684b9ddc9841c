/**
 * @description: 菜单接口
 * @func:
 * 	1.获取当前用户菜单树
 * 	2.获取指定用户菜单树(管理员)
 */
package system

import (
	"errors"
	"net/http"
	"strconv"

	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/logger"
	"rbacmaster/internal/pkg/utils"
	"rbacmaster/internal/service/menu"

	"github.com/gin-gonic/gin"
)

// MenuHandler 菜单处理器
type MenuHandler struct {
	menuService *menu.Service
}

// NewMenuHandler 创建菜单处理器
func NewMenuHandler(menuService *menu.Service) *MenuHandler {
	return &MenuHandler{
		menuService: menuService,
	}
}

// GetMyMenus 获取当前登录用户的菜单树
// GET /api/menu/my-menus
// 成功200，业务失败400，数据库错误500
func (h *MenuHandler) GetMyMenus(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	XRequestID := utils.GetRequestID(c)
	pathUrl := c.Request.URL.String()

	userID := utils.GetCurrentUserID(c)
	if userID == 0 {
		logger.LogBusinessError(errors.New("user not authenticated"), XRequestID, 0, clientIP, pathUrl, "GET", map[string]interface{}{
			"operation": "get_my_menus",
		})
		c.JSON(http.StatusUnauthorized, system.APIResponse{
			Code:       http.StatusUnauthorized,
			Status:     "failed",
			ResultCode: system.CodeUnauthorized,
			Message:    "用户未登录",
		})
		return
	}

	result := h.menuService.GetMenusForUser(c.Request.Context(), userID)
	status := http.StatusOK
	if !result.IsSuccess() {
		status = http.StatusBadRequest
		if result.Code.IsSystemError() {
			status = http.StatusInternalServerError
		}
	}
	h.respond(c, "get_my_menus", userID, userID, status, result)
}

// GetUserMenus 获取指定用户的菜单树，仅 SuperAdmin/Admin 可访问
// GET /api/menu/:userId/menus
// 成功200，业务失败404，数据库错误500
func (h *MenuHandler) GetUserMenus(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	XRequestID := utils.GetRequestID(c)
	pathUrl := c.Request.URL.String()
	operatorID := utils.GetCurrentUserID(c)

	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil || targetID == 0 {
		if err == nil {
			err = errors.New("user id must be positive")
		}
		logger.LogBusinessError(err, XRequestID, operatorID, clientIP, pathUrl, "GET", map[string]interface{}{
			"operation": "get_user_menus",
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

	result := h.menuService.GetMenusForUser(c.Request.Context(), uint(targetID))
	status := http.StatusOK
	if !result.IsSuccess() {
		status = http.StatusNotFound
		if result.Code.IsSystemError() {
			status = http.StatusInternalServerError
		}
	}
	h.respond(c, "get_user_menus", operatorID, uint(targetID), status, result)
}

func (h *MenuHandler) respond(c *gin.Context, operation string, operatorID, targetID uint, status int, result system.Result[[]*model.MenuNode]) {
	clientIP := utils.GetClientIP(c)
	XRequestID := utils.GetRequestID(c)

	switch {
	case result.IsSuccess():
		logger.LogBusinessOperation(operation, operatorID, utils.GetCurrentUsername(c), clientIP, XRequestID, "success", result.Message, map[string]interface{}{
			"operation":      operation,
			"target_user_id": targetID,
			"root_count":     len(result.Data),
		})
	case result.Code.IsSystemError():
		logger.LogBusinessError(result, XRequestID, operatorID, clientIP, c.Request.URL.String(), "GET", map[string]interface{}{
			"operation":      operation,
			"target_user_id": targetID,
			"result_code":    result.Code,
		})
	default:
		logger.LogBusinessOperation(operation, operatorID, utils.GetCurrentUsername(c), clientIP, XRequestID, "failed", result.Message, map[string]interface{}{
			"operation":      operation,
			"target_user_id": targetID,
			"result_code":    result.Code,
		})
	}

	c.JSON(system.FromResult(result, status))
}
