/**
 * @description: 开发辅助接口，仅在 app.features.dev_endpoints 开启时注册
 * @func:
 * 	1.初始化种子数据
 * 	2.清空数据
 * 	3.重置数据
 */
package system

import (
	"context"

	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/logger"
	"rbacmaster/internal/pkg/utils"
	"rbacmaster/internal/service/seed"

	"github.com/gin-gonic/gin"
)

// DevHandler 开发辅助处理器
type DevHandler struct {
	seedService *seed.SeedService
}

// NewDevHandler 创建开发辅助处理器
func NewDevHandler(seedService *seed.SeedService) *DevHandler {
	return &DevHandler{
		seedService: seedService,
	}
}

// Initialize 初始化种子数据
// POST /api/dev/initial
func (h *DevHandler) Initialize(c *gin.Context) {
	h.run(c, "seed_initialize", h.seedService.Initialize)
}

// Clean 清空所有 RBAC 数据
// POST /api/dev/clean
func (h *DevHandler) Clean(c *gin.Context) {
	h.run(c, "seed_clean", h.seedService.Clean)
}

// Reset 清空后重新初始化
// POST /api/dev/reset
func (h *DevHandler) Reset(c *gin.Context) {
	h.run(c, "seed_reset", h.seedService.Reset)
}

func (h *DevHandler) run(c *gin.Context, action string, fn func(ctx context.Context) system.Result[seed.Summary]) {
	clientIP := utils.GetClientIP(c)
	XRequestID := utils.GetRequestID(c)
	userAgent := c.GetHeader("User-Agent")

	result := fn(c.Request.Context())

	outcome := "success"
	if !result.IsSuccess() {
		outcome = "failed"
		logger.LogBusinessError(result, XRequestID, 0, clientIP, c.Request.URL.String(), "POST", map[string]interface{}{
			"operation": action,
		})
	}
	logger.LogAuditOperation(0, "", action, "rbac_seed_data", outcome, clientIP, userAgent, XRequestID, map[string]interface{}{
		"skipped": result.Data.Skipped,
	})

	c.JSON(system.FromResult(result, 0))
}
