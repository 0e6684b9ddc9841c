// 日志管理器
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"rbacmaster/internal/config"

	"github.com/sirupsen/logrus"
)

// timestampFormat 日志时间戳格式(毫秒精度)
const timestampFormat = "2006-01-02 15:04:05.000"

// LoggerManager 日志管理器
type LoggerManager struct {
	logger *logrus.Logger
	config config.LogConfig
	hook   *FileHook
	mu     sync.Mutex
}

// LoggerInstance 全局日志实例，供 handler/repo 层的便捷函数使用
var LoggerInstance *LoggerManager

// NewLoggerManager 根据配置创建日志管理器，不修改全局实例
func NewLoggerManager(cfg config.LogConfig) (*LoggerManager, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logger.SetLevel(level)

	if err := setLogFormatter(logger, cfg.Format); err != nil {
		return nil, err
	}

	lm := &LoggerManager{logger: logger, config: cfg}
	lm.applyOutput(cfg)
	logger.SetReportCaller(cfg.Caller)

	return lm, nil
}

// InitLogger 初始化全局日志管理器
func InitLogger(cfg config.LogConfig) (*LoggerManager, error) {
	lm, err := NewLoggerManager(cfg)
	if err != nil {
		return nil, err
	}
	LoggerInstance = lm
	return lm, nil
}

// setLogFormatter 设置日志格式化器
func setLogFormatter(logger *logrus.Logger, format string) error {
	switch strings.ToLower(format) {
	case "json":
		logger.SetFormatter(newJSONFormatter())
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
		})
	default:
		return fmt.Errorf("unsupported log format: %s", format)
	}
	return nil
}

func newJSONFormatter() *logrus.JSONFormatter {
	return &logrus.JSONFormatter{
		TimestampFormat: timestampFormat,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
			logrus.FieldKeyFunc:  "function",
			logrus.FieldKeyFile:  "file",
		},
	}
}

// applyOutput 设置日志输出目标
// file 模式下主输出丢弃，由 FileHook 按日志类型分文件写入
func (lm *LoggerManager) applyOutput(cfg config.LogConfig) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	switch cfg.Output {
	case "stderr":
		lm.logger.SetOutput(os.Stderr)
	case "file":
		lm.logger.SetOutput(io.Discard)
	default:
		lm.logger.SetOutput(os.Stdout)
	}

	if cfg.Output == "file" {
		if lm.hook == nil {
			lm.hook = NewFileHook(cfg)
			lm.logger.AddHook(lm.hook)
		} else {
			lm.hook.Reset(cfg)
		}
	} else if lm.hook != nil {
		lm.hook.Reset(config.LogConfig{})
	}
}

// GetLogger 获取logrus实例
func (lm *LoggerManager) GetLogger() *logrus.Logger {
	return lm.logger
}

// GetConfig 获取日志配置
func (lm *LoggerManager) GetConfig() config.LogConfig {
	return lm.config
}

// UpdateConfig 运行时更新日志配置(配置热加载回调)
func (lm *LoggerManager) UpdateConfig(newCfg config.LogConfig) error {
	if newCfg.Level != lm.config.Level {
		level, err := logrus.ParseLevel(newCfg.Level)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		lm.logger.SetLevel(level)
		lm.logger.Infof("Log level updated from %s to %s", lm.config.Level, newCfg.Level)
	}

	if newCfg.Format != lm.config.Format {
		if err := setLogFormatter(lm.logger, newCfg.Format); err != nil {
			return fmt.Errorf("failed to update log formatter: %w", err)
		}
	}

	if newCfg.Output != lm.config.Output || newCfg.FilePath != lm.config.FilePath {
		lm.applyOutput(newCfg)
	}

	lm.logger.SetReportCaller(newCfg.Caller)
	lm.config = newCfg
	return nil
}

// Close 关闭日志文件
func (lm *LoggerManager) Close() error {
	if lm.hook != nil {
		return lm.hook.Close()
	}
	return nil
}

// L 返回全局 logrus 实例，未初始化时返回标准 logger
func L() *logrus.Logger {
	if LoggerInstance != nil {
		return LoggerInstance.logger
	}
	return logrus.StandardLogger()
}

// WithField 添加单个字段
func WithField(key string, value interface{}) *logrus.Entry {
	return L().WithField(key, value)
}

// WithFields 添加多个字段
func WithFields(fields logrus.Fields) *logrus.Entry {
	return L().WithFields(fields)
}

// Info 记录信息日志
func Info(args ...interface{}) {
	L().Info(args...)
}

// Infof 记录格式化信息日志
func Infof(format string, args ...interface{}) {
	L().Infof(format, args...)
}

// Warnf 记录格式化警告日志
func Warnf(format string, args ...interface{}) {
	L().Warnf(format, args...)
}

// Errorf 记录格式化错误日志
func Errorf(format string, args ...interface{}) {
	L().Errorf(format, args...)
}
