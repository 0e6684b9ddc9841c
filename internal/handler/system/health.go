/**
 * @description: 依赖检查接口
 * @func:
 * 	1.就绪检查(数据库、Redis)
 * 	2.API 连通性测试
 * 	3.数据库连接测试
 */
package system

import (
	"context"
	"net/http"
	"time"

	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const checkTimeout = 2 * time.Second

// HealthHandler 依赖检查处理器
type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.Client // 未启用 Redis 时为 nil
}

// NewHealthHandler 创建依赖检查处理器
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
	}
}

// Ready 就绪检查，数据库和 Redis 均可用时返回200，否则503
// GET /api/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	checks := map[string]string{"database": "ok"}
	ready := true
	if err := h.pingDB(ctx); err != nil {
		checks["database"] = err.Error()
		ready = false
	}
	if h.redisClient != nil {
		checks["redis"] = "ok"
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			ready = false
		}
	}

	if !ready {
		logger.WithFields(map[string]interface{}{
			"path":      "/api/ready",
			"operation": "readiness_check",
			"checks":    checks,
		}).Warn("依赖服务未就绪")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not_ready",
			"checks":    checks,
			"timestamp": logger.NowFormatted(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"checks":    checks,
		"timestamp": logger.NowFormatted(),
	})
}

// Ping 测试 API 是否正常运行
// GET /api/test/ping
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, system.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "API 运行正常",
		Data:    gin.H{"timestamp": logger.NowFormatted()},
	})
}

// DBConnection 测试数据库连接并返回数据库版本
// GET /api/test/db-connection
func (h *HealthHandler) DBConnection(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	driver := h.db.Dialector.Name()
	var version string
	err := h.db.WithContext(ctx).Raw(versionQuery(driver)).Scan(&version).Error
	if err != nil {
		logger.LogError(err, c.GetHeader("X-Request-ID"), 0, c.ClientIP(), c.Request.URL.String(), "GET", map[string]interface{}{
			"operation": "test_db_connection",
			"driver":    driver,
		})
		c.JSON(http.StatusInternalServerError, system.APIResponse{
			Code:       http.StatusInternalServerError,
			Status:     "failed",
			ResultCode: system.CodeDatabaseError,
			Message:    "数据库连接失败",
		})
		return
	}

	c.JSON(http.StatusOK, system.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "数据库连接成功",
		Data: gin.H{
			"database":  driver,
			"version":   version,
			"timestamp": logger.NowFormatted(),
		},
	})
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func versionQuery(driver string) string {
	switch driver {
	case "sqlite":
		return "SELECT sqlite_version()"
	case "mysql":
		return "SELECT VERSION()"
	default:
		return "SELECT version()"
	}
}
