/*
ConfigWatcher 配置文件监听器
监听配置文件所在目录，配置文件写入或重建后(500ms 防抖)重新加载配置，
并把新旧配置交给已注册的回调函数处理。
*/
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify" // 文件系统监听库
	"github.com/sirupsen/logrus"
)

// reloadDebounce 配置变更防抖时间
const reloadDebounce = 500 * time.Millisecond

// ReloadCallback 配置重载回调函数类型
type ReloadCallback func(oldConfig, newConfig *Config) error

// ConfigWatcher 配置文件监听器
type ConfigWatcher struct {
	watcher    *fsnotify.Watcher  // 文件系统监听器
	configPath string             // 配置文件目录
	env        string             // 环境标识
	current    *Config            // 当前生效的配置
	callbacks  []ReloadCallback   // 重载回调函数列表
	log        logrus.FieldLogger // 日志
	mu         sync.RWMutex       // 读写锁
	ctx        context.Context    // 上下文
	cancel     context.CancelFunc // 取消函数
	done       chan struct{}      // 完成信号
}

// NewConfigWatcher 创建配置文件监听器
// current 为当前生效的配置，首次重载时作为 oldConfig 传给回调
func NewConfigWatcher(configPath, env string, current *Config, log logrus.FieldLogger) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &ConfigWatcher{
		watcher:    watcher,
		configPath: configPath,
		env:        env,
		current:    current,
		log:        log.WithField("component", "config_watcher"),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}, nil
}

// Start 启动配置文件监听
func (cw *ConfigWatcher) Start() error {
	if err := cw.watcher.Add(cw.configPath); err != nil {
		return fmt.Errorf("failed to add config path to watcher: %w", err)
	}

	go cw.watchLoop()

	cw.log.WithField("path", cw.configPath).Info("config watcher started")
	return nil
}

// Stop 停止配置文件监听
func (cw *ConfigWatcher) Stop() error {
	cw.cancel()

	select {
	case <-cw.done:
	case <-time.After(5 * time.Second):
		cw.log.Warn("config watcher stop timeout")
	}

	return cw.watcher.Close()
}

// AddCallback 添加配置重载回调函数
func (cw *ConfigWatcher) AddCallback(callback ReloadCallback) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

// Current 返回当前生效的配置
func (cw *ConfigWatcher) Current() *Config {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.current
}

// watchLoop 监听循环
func (cw *ConfigWatcher) watchLoop() {
	defer close(cw.done)

	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}

	for {
		select {
		case <-cw.ctx.Done():
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			// 只处理写入和创建事件
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if isConfigFile(event.Name) {
				cw.log.WithField("file", event.Name).Debug("config file changed")
				debounceTimer.Reset(reloadDebounce)
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.log.WithError(err).Warn("config watcher error")

		case <-debounceTimer.C:
			if err := cw.reload(); err != nil {
				cw.log.WithError(err).Error("failed to reload config")
			}
		}
	}
}

// isConfigFile 检查是否为配置文件
func isConfigFile(filename string) bool {
	switch filepath.Base(filename) {
	case "config.yaml", "config.yml",
		"config.test.yaml", "config.test.yml",
		"config.prod.yaml", "config.prod.yml":
		return true
	}
	return false
}

// reload 重载配置并依次执行回调，单个回调失败不影响其他回调
func (cw *ConfigWatcher) reload() error {
	newConfig, err := LoadConfig(cw.configPath, cw.env)
	if err != nil {
		return fmt.Errorf("failed to load new config: %w", err)
	}

	cw.mu.Lock()
	oldConfig := cw.current
	cw.current = newConfig
	callbacks := make([]ReloadCallback, len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mu.Unlock()

	for _, callback := range callbacks {
		if err := callback(oldConfig, newConfig); err != nil {
			cw.log.WithError(err).Warn("config reload callback error")
		}
	}

	cw.log.Info("config reloaded")
	return nil
}

// MenuCacheChanged 判断菜单缓存配置是否变化
func MenuCacheChanged(oldConfig, newConfig *Config) bool {
	if oldConfig == nil || newConfig == nil {
		return false
	}
	return oldConfig.Menu.Cache != newConfig.Menu.Cache
}

// LogLevelChanged 判断日志级别是否变化
func LogLevelChanged(oldConfig, newConfig *Config) bool {
	if oldConfig == nil || newConfig == nil {
		return false
	}
	return oldConfig.Log.Level != newConfig.Log.Level || oldConfig.Log.Format != newConfig.Log.Format
}
