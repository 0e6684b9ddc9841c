/**
 * 缓存仓库层:令牌数据访问
 * @description: 刷新令牌与访问令牌撤销记录(Redis存储,适合多实例部署)
 * @func: 单纯数据访问,不应该包含业务逻辑
 * @note: 和 internal/repo/memory/session.go 保持一致(启用 Redis 时使用 Redis，否则使用内存)
 */
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionRepository Redis令牌存储库
type SessionRepository struct {
	client *redis.Client
}

// NewSessionRepository 创建令牌存储库实例
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{
		client: client,
	}
}

// StoreRefreshToken 存储刷新令牌，值为用户ID
func (r *SessionRepository) StoreRefreshToken(ctx context.Context, token string, userID uint, expiration time.Duration) error {
	err := r.client.Set(ctx, r.getRefreshTokenKey(token), userID, expiration).Err()
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// ConsumeRefreshToken 取出并删除刷新令牌(一次性使用)，不存在时返回 found=false
func (r *SessionRepository) ConsumeRefreshToken(ctx context.Context, token string) (uint, bool, error) {
	// GETDEL 需要 Redis 6.2，这里用 MULTI 保证读删原子
	key := r.getRefreshTokenKey(token)
	var get *redis.StringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.Get(ctx, key)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, false, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	userID, err := get.Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to parse refresh token owner: %w", err)
	}
	return uint(userID), true, nil
}

// DeleteRefreshToken 删除刷新令牌
func (r *SessionRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.getRefreshTokenKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// RevokeToken 撤销访问令牌(加入黑名单)，值为撤销时间戳，过期时间应不短于令牌剩余有效期
func (r *SessionRepository) RevokeToken(ctx context.Context, tokenID string, expiration time.Duration) error {
	if expiration <= 0 {
		return nil
	}
	err := r.client.Set(ctx, r.getRevokedTokenKey(tokenID), time.Now().Unix(), expiration).Err()
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked 检查访问令牌是否已被撤销
func (r *SessionRepository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.getRevokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return exists > 0, nil
}

// Ping 检查Redis连接
func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// getRefreshTokenKey 生成刷新令牌键[KEY:refresh:token:{token}]
func (r *SessionRepository) getRefreshTokenKey(token string) string {
	return fmt.Sprintf("refresh:token:%s", token)
}

// getRevokedTokenKey 生成撤销令牌键[KEY:revoked:token:{jti}]
func (r *SessionRepository) getRevokedTokenKey(tokenID string) string {
	return fmt.Sprintf("revoked:token:%s", tokenID)
}
