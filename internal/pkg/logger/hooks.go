package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"rbacmaster/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileHook 按日志类型(type 字段)把日志写入不同的滚动文件
// access.log / business.log / error.log / system.log / audit.log，未标注类型的写入 FilePath
type FileHook struct {
	cfg       config.LogConfig
	writers   map[LogType]*lumberjack.Logger
	formatter logrus.Formatter
	mutex     sync.Mutex
}

// NewFileHook 创建一个新的FileHook实例
func NewFileHook(cfg config.LogConfig) *FileHook {
	return &FileHook{
		cfg:       cfg,
		writers:   make(map[LogType]*lumberjack.Logger),
		formatter: newJSONFormatter(),
	}
}

// Levels 返回此Hook关心的所有日志级别
func (hook *FileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire 在日志触发时执行
func (hook *FileHook) Fire(entry *logrus.Entry) error {
	hook.mutex.Lock()
	defer hook.mutex.Unlock()

	if hook.cfg.FilePath == "" {
		return nil
	}

	writer := hook.writerFor(entryType(entry))
	formatted, err := hook.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = writer.Write(formatted)
	return err
}

// Reset 替换配置并关闭已打开的文件，下次写入时按新配置重新打开
func (hook *FileHook) Reset(cfg config.LogConfig) {
	hook.mutex.Lock()
	defer hook.mutex.Unlock()
	hook.closeWriters()
	hook.cfg = cfg
}

// Close 关闭所有日志文件
func (hook *FileHook) Close() error {
	hook.mutex.Lock()
	defer hook.mutex.Unlock()
	return hook.closeWriters()
}

func (hook *FileHook) closeWriters() error {
	var firstErr error
	for t, w := range hook.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(hook.writers, t)
	}
	return firstErr
}

// writerFor 获取指定类型的writer，调用方持有锁
func (hook *FileHook) writerFor(logType LogType) io.Writer {
	if writer, ok := hook.writers[logType]; ok {
		return writer
	}

	filename := hook.cfg.FilePath
	switch logType {
	case AccessLog, BusinessLog, ErrorLog, SystemLog, AuditLog:
		filename = filepath.Join(filepath.Dir(hook.cfg.FilePath), string(logType)+".log")
	default:
		logType = ""
		if writer, ok := hook.writers[logType]; ok {
			return writer
		}
	}

	_ = os.MkdirAll(filepath.Dir(filename), 0755)
	writer := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    hook.cfg.MaxSize,
		MaxBackups: hook.cfg.MaxBackups,
		MaxAge:     hook.cfg.MaxAge,
		Compress:   hook.cfg.Compress,
	}
	hook.writers[logType] = writer
	return writer
}

// entryType 读取日志条目的 type 字段
func entryType(entry *logrus.Entry) LogType {
	switch t := entry.Data["type"].(type) {
	case LogType:
		return t
	case string:
		return LogType(t)
	}
	return ""
}
