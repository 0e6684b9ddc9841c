package auth

import (
	"net/http"

	"rbacmaster/internal/model/system"
	"rbacmaster/internal/pkg/logger"
	"rbacmaster/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// requestMeta 处理器日志中使用的请求信息
type requestMeta struct {
	clientIP   string
	requestID  string
	pathUrl    string
	userAgent  string
	httpMethod string
}

func newRequestMeta(c *gin.Context) requestMeta {
	requestID := utils.GetRequestID(c)
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}
	return requestMeta{
		clientIP:   utils.GetClientIP(c),
		requestID:  requestID,
		pathUrl:    c.Request.URL.String(),
		userAgent:  c.GetHeader("User-Agent"),
		httpMethod: c.Request.Method,
	}
}

// bindFailed 请求体解析或校验失败时统一返回400
func bindFailed(c *gin.Context, meta requestMeta, operation string, err error) {
	logger.LogBusinessError(err, meta.requestID, 0, meta.clientIP, meta.pathUrl, meta.httpMethod, map[string]interface{}{
		"operation":  operation,
		"user_agent": meta.userAgent,
	})
	c.JSON(http.StatusBadRequest, system.APIResponse{
		Code:       http.StatusBadRequest,
		Status:     "failed",
		ResultCode: system.CodeValidationError,
		Message:    "请求参数错误",
		Errors:     utils.TranslateBindError(err),
	})
}
