/**
 * 缓存仓库层:用户菜单树缓存
 * @description: 用户菜单树的 Redis 缓存(适合多实例部署)，值为菜单森林的 JSON
 * @func: 单纯数据访问,不包含业务逻辑
 */
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rbacmaster/internal/model"

	"github.com/go-redis/redis/v8"
)

// 默认键前缀
const DefaultMenuCachePrefix = "rbac:menu"

// MenuCacheRepository Redis 菜单树缓存
type MenuCacheRepository struct {
	client *redis.Client
	prefix string
}

// NewMenuCacheRepository 创建菜单树缓存，prefix 为空时使用默认前缀
func NewMenuCacheRepository(client *redis.Client, prefix string) *MenuCacheRepository {
	if prefix == "" {
		prefix = DefaultMenuCachePrefix
	}
	return &MenuCacheRepository{client: client, prefix: prefix}
}

// Get 读取用户菜单树，键不存在时返回 hit=false
func (r *MenuCacheRepository) Get(ctx context.Context, userID uint) ([]*model.MenuNode, bool, error) {
	data, err := r.client.Get(ctx, r.treeKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get menu tree: %w", err)
	}

	forest := make([]*model.MenuNode, 0)
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal menu tree: %w", err)
	}
	return forest, true, nil
}

// Set 写入用户菜单树
func (r *MenuCacheRepository) Set(ctx context.Context, userID uint, forest []*model.MenuNode, ttl time.Duration) error {
	if forest == nil {
		forest = []*model.MenuNode{}
	}
	data, err := json.Marshal(forest)
	if err != nil {
		return fmt.Errorf("failed to marshal menu tree: %w", err)
	}
	if err := r.client.Set(ctx, r.treeKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store menu tree: %w", err)
	}
	return nil
}

// Delete 删除用户菜单树
func (r *MenuCacheRepository) Delete(ctx context.Context, userID uint) error {
	if err := r.client.Del(ctx, r.treeKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete menu tree: %w", err)
	}
	return nil
}

// Flush 删除前缀下全部菜单树，使用 SCAN 避免阻塞
func (r *MenuCacheRepository) Flush(ctx context.Context) error {
	var cursor uint64
	pattern := r.prefix + ":tree:*"
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan menu tree keys: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete menu tree keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// treeKey [KEY:<prefix>:tree:<userID>]
func (r *MenuCacheRepository) treeKey(userID uint) string {
	return fmt.Sprintf("%s:tree:%d", r.prefix, userID)
}
