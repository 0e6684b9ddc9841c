// 分类日志记录函数
package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FormatTimestamp 格式化时间戳为统一的毫秒精度格式
func FormatTimestamp(t time.Time) string {
	return t.Format(timestampFormat)
}

// NowFormatted 返回当前时间的格式化字符串
func NowFormatted() string {
	return FormatTimestamp(time.Now())
}

// LogType 日志类型枚举
type LogType string

const (
	// AccessLog 访问日志 - 记录HTTP请求
	AccessLog LogType = "access"
	// BusinessLog 业务日志 - 登录、注册、菜单查询等业务操作
	BusinessLog LogType = "business"
	// ErrorLog 错误日志 - 系统错误和异常
	ErrorLog LogType = "error"
	// SystemLog 系统日志 - 组件启动、关闭、配置重载
	SystemLog LogType = "system"
	// AuditLog 审计日志 - 越权访问、种子数据重置等安全相关操作
	AuditLog LogType = "audit"
)

func withExtra(fields logrus.Fields, extraFields map[string]interface{}) logrus.Fields {
	for k, v := range extraFields {
		if _, reserved := fields[k]; reserved {
			continue
		}
		fields[k] = v
	}
	return fields
}

// LogAccessRequest 记录HTTP访问日志
func LogAccessRequest(c *gin.Context, startTime time.Time, requestID string, userID uint) {
	L().WithFields(logrus.Fields{
		"type":          AccessLog,
		"method":        c.Request.Method,
		"path":          c.Request.URL.Path,
		"query":         c.Request.URL.RawQuery,
		"status_code":   c.Writer.Status(),
		"response_time": time.Since(startTime).Milliseconds(),
		"client_ip":     c.ClientIP(),
		"user_agent":    c.Request.UserAgent(),
		"user_id":       userID,
		"request_id":    requestID,
		"request_size":  c.Request.ContentLength,
		"response_size": c.Writer.Size(),
	}).Info("HTTP request processed")
}

// LogBusinessOperation 记录业务操作日志
// result 为 success 时记 Info，否则记 Warn
func LogBusinessOperation(operation string, userID uint, username, clientIP, requestID, result, message string, extraFields map[string]interface{}) {
	entry := L().WithFields(withExtra(logrus.Fields{
		"type":       BusinessLog,
		"operation":  operation,
		"user_id":    userID,
		"username":   username,
		"client_ip":  clientIP,
		"result":     result,
		"message":    message,
		"request_id": requestID,
	}, extraFields))

	if result == "success" {
		entry.Info(fmt.Sprintf("Business operation: %s", operation))
	} else {
		entry.Warn(fmt.Sprintf("Business operation failed: %s", operation))
	}
}

// LogBusinessError 记录业务处理失败(参数校验、业务规则、下游调用)的错误日志
// 操作名通过 extraFields["operation"] 传入
func LogBusinessError(err error, requestID string, userID uint, clientIP, path, method string, extraFields map[string]interface{}) {
	if err == nil {
		return
	}
	L().WithFields(withExtra(logrus.Fields{
		"type":       ErrorLog,
		"error":      err.Error(),
		"request_id": requestID,
		"user_id":    userID,
		"client_ip":  clientIP,
		"path":       path,
		"method":     method,
	}, extraFields)).Errorf("Business error: %s", err.Error())
}

// LogError 记录错误日志
func LogError(err error, requestID string, userID uint, clientIP, path, method string, extraFields map[string]interface{}) {
	if err == nil {
		return
	}
	L().WithFields(withExtra(logrus.Fields{
		"type":       ErrorLog,
		"error":      err.Error(),
		"request_id": requestID,
		"user_id":    userID,
		"client_ip":  clientIP,
		"path":       path,
		"method":     method,
	}, extraFields)).Errorf("System error occurred: %s", err.Error())
}

// LogSystemEvent 记录系统事件日志
func LogSystemEvent(component, event, message string, level logrus.Level, extraFields map[string]interface{}) {
	entry := L().WithFields(withExtra(logrus.Fields{
		"type":      SystemLog,
		"component": component,
		"event":     event,
		"message":   message,
	}, extraFields))
	// Fatal/Panic 不在此处触发进程退出
	if level < logrus.ErrorLevel {
		level = logrus.ErrorLevel
	}
	entry.Log(level, fmt.Sprintf("System event: %s - %s", component, event))
}

// LogAuditOperation 记录审计日志
func LogAuditOperation(userID uint, username, action, resource, result, clientIP, userAgent, requestID string, extraFields map[string]interface{}) {
	L().WithFields(withExtra(logrus.Fields{
		"type":       AuditLog,
		"user_id":    userID,
		"username":   username,
		"action":     action,
		"resource":   resource,
		"result":     result,
		"client_ip":  clientIP,
		"user_agent": userAgent,
		"request_id": requestID,
	}, extraFields)).Info(fmt.Sprintf("Audit: %s performed %s on %s", username, action, resource))
}
