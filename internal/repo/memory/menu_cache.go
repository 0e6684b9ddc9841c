/**
 * 缓存仓库层:用户菜单树缓存
 * @description: 进程内菜单树缓存(适合单实例部署)，基于带过期时间的 LRU
 * @func: 单纯数据访问,不包含业务逻辑
 * @note: 过期时间在创建时确定，Set 的 ttl 参数被忽略
 */
package memory

import (
	"context"
	"time"

	"rbacmaster/internal/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MenuCacheRepository 内存菜单树缓存
type MenuCacheRepository struct {
	lru *expirable.LRU[uint, []*model.MenuNode]
}

// NewMenuCacheRepository 创建内存菜单树缓存
func NewMenuCacheRepository(size int, ttl time.Duration) *MenuCacheRepository {
	if size <= 0 {
		size = 1024
	}
	return &MenuCacheRepository{
		lru: expirable.NewLRU[uint, []*model.MenuNode](size, nil, ttl),
	}
}

// Get 读取用户菜单树
// 返回的菜单树与其他调用方共享，调用方不得修改
func (r *MenuCacheRepository) Get(_ context.Context, userID uint) ([]*model.MenuNode, bool, error) {
	forest, ok := r.lru.Get(userID)
	return forest, ok, nil
}

// Set 写入用户菜单树
func (r *MenuCacheRepository) Set(_ context.Context, userID uint, forest []*model.MenuNode, _ time.Duration) error {
	if forest == nil {
		forest = []*model.MenuNode{}
	}
	r.lru.Add(userID, forest)
	return nil
}

// Delete 删除用户菜单树
func (r *MenuCacheRepository) Delete(_ context.Context, userID uint) error {
	r.lru.Remove(userID)
	return nil
}

// Flush 清空缓存
func (r *MenuCacheRepository) Flush(_ context.Context) error {
	r.lru.Purge()
	return nil
}

// Len 当前缓存条目数
func (r *MenuCacheRepository) Len() int {
	return r.lru.Len()
}
