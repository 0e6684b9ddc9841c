/**
 * 缓存仓库层:令牌数据访问
 * @description: 刷新令牌与访问令牌撤销记录(内存存储,适合单实例部署)
 * @func: 单纯数据访问,不应该包含业务逻辑
 * @note: 和 internal/repo/redis/session.go 保持一致(启用 Redis 时使用 Redis，否则使用内存)
 */
package memory

import (
	"context"
	"sync"
	"time"
)

// SessionRepository 内存令牌存储库
type SessionRepository struct {
	refreshTokens map[string]*refreshTokenEntry
	revokedTokens map[string]time.Time // jti -> 过期时间
	mutex         sync.RWMutex
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// refreshTokenEntry 刷新令牌条目
type refreshTokenEntry struct {
	userID     uint
	expiration time.Time
}

// NewSessionRepository 创建内存令牌存储库实例，cleanupInterval 为过期清理间隔
func NewSessionRepository(cleanupInterval time.Duration) *SessionRepository {
	repo := &SessionRepository{
		refreshTokens: make(map[string]*refreshTokenEntry),
		revokedTokens: make(map[string]time.Time),
		stopCh:        make(chan struct{}),
	}

	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	// 启动过期清理goroutine
	go repo.cleanupExpired(cleanupInterval)

	return repo
}

// cleanupExpired 定期清理过期条目
func (r *SessionRepository) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.purge(time.Now())
		}
	}
}

func (r *SessionRepository) purge(now time.Time) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for token, entry := range r.refreshTokens {
		if now.After(entry.expiration) {
			delete(r.refreshTokens, token)
		}
	}
	for jti, expiration := range r.revokedTokens {
		if now.After(expiration) {
			delete(r.revokedTokens, jti)
		}
	}
}

// StoreRefreshToken 存储刷新令牌
func (r *SessionRepository) StoreRefreshToken(_ context.Context, token string, userID uint, expiration time.Duration) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.refreshTokens[token] = &refreshTokenEntry{
		userID:     userID,
		expiration: time.Now().Add(expiration),
	}
	return nil
}

// ConsumeRefreshToken 取出并删除刷新令牌(一次性使用)
func (r *SessionRepository) ConsumeRefreshToken(_ context.Context, token string) (uint, bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, exists := r.refreshTokens[token]
	if !exists {
		return 0, false, nil
	}
	delete(r.refreshTokens, token)

	if time.Now().After(entry.expiration) {
		return 0, false, nil
	}
	return entry.userID, true, nil
}

// DeleteRefreshToken 删除刷新令牌
func (r *SessionRepository) DeleteRefreshToken(_ context.Context, token string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.refreshTokens, token)
	return nil
}

// RevokeToken 撤销访问令牌
func (r *SessionRepository) RevokeToken(_ context.Context, tokenID string, expiration time.Duration) error {
	if expiration <= 0 {
		return nil
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.revokedTokens[tokenID] = time.Now().Add(expiration)
	return nil
}

// IsTokenRevoked 检查访问令牌是否已被撤销
func (r *SessionRepository) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	expiration, exists := r.revokedTokens[tokenID]
	if !exists {
		return false, nil
	}
	return time.Now().Before(expiration), nil
}

// Ping 内存存储始终可用
func (r *SessionRepository) Ping(_ context.Context) error {
	return nil
}

// Close 停止过期清理
func (r *SessionRepository) Close() error {
	r.stopOnce.Do(func() { close(r.stopCh) })
	return nil
}
