/**
 * 菜单服务:用户菜单查询
 * @description: 组合权限解析、菜单查询与菜单树组装，返回带业务码的结果；可选菜单树缓存
 * @func: Service.GetMenusForUser, Service.InvalidateUser, Service.InvalidateAll
 */
package menu

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"time"

	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// 结果提示信息
const (
	MsgQuerySuccess = "查询菜单成功"
	MsgQueryFailed  = "查询菜单失败"
	MsgCanceled     = "查询菜单已取消"
	MsgMenuCorrupt  = "菜单数据异常"
)

// MenuTreeCache 用户菜单树缓存
type MenuTreeCache interface {
	Get(ctx context.Context, userID uint) ([]*model.MenuNode, bool, error)
	Set(ctx context.Context, userID uint, forest []*model.MenuNode, ttl time.Duration) error
	Delete(ctx context.Context, userID uint) error
	Flush(ctx context.Context) error
}

// Options 菜单服务构造参数
type Options struct {
	Tree     TreeBuilder        // 菜单树组装配置
	Cache    MenuTreeCache      // 菜单树缓存，nil 表示不缓存
	CacheTTL time.Duration      // 缓存有效期
	Logger   logrus.FieldLogger // 日志，nil 时丢弃
}

// Service 用户菜单服务
type Service struct {
	resolver *Resolver
	menus    MenuLister
	tree     TreeBuilder
	cache    MenuTreeCache
	cacheTTL time.Duration
	log      logrus.FieldLogger
	group    singleflight.Group

	// 失效时递增；回填缓存前比对，加载期间发生过失效则不写入
	mu         sync.RWMutex
	generation uint64
}

// NewService 创建菜单服务
func NewService(memberships MembershipLookup, grants GrantLookup, menus MenuLister, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Service{
		resolver: NewResolver(memberships, grants),
		menus:    menus,
		tree:     opts.Tree,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		log:      log.WithField("component", "menu_service"),
	}
}

// Resolver 返回权限解析器
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// GetMenusForUser 查询用户可访问的菜单树
//   - 超级管理员获得全部可见菜单
//   - 非超级管理员没有任何菜单授权时返回 CodeNoMenusGranted
//   - 授权菜单全部被过滤(不可见或父菜单未授权)时返回成功和空森林
//   - 查询失败返回 CodeDatabaseError，循环引用返回 CodeInternalError，原始错误保存在 Result.Err
func (s *Service) GetMenusForUser(ctx context.Context, userID uint) system.Result[[]*model.MenuNode] {
	if err := ctx.Err(); err != nil {
		return system.FailureWithError[[]*model.MenuNode](system.CodeError, MsgCanceled, err)
	}

	if s.cache == nil {
		return s.load(ctx, userID)
	}

	forest, hit, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("menu cache get failed, loading from database")
	} else if hit {
		s.log.WithField("user_id", userID).Debug("menu cache hit")
		return system.Success(forest, MsgQuerySuccess)
	}

	// 同一用户并发未命中时只加载一次
	// 共享加载不随任一调用方取消，各调用方只等待自己的 ctx
	gen := s.currentGeneration()
	key := strconv.FormatUint(gen, 10) + ":" + strconv.FormatUint(uint64(userID), 10)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		loadCtx := context.WithoutCancel(ctx)
		result := s.load(loadCtx, userID)
		if result.IsSuccess() {
			s.fill(loadCtx, gen, userID, result.Data)
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		return system.FailureWithError[[]*model.MenuNode](system.CodeError, MsgCanceled, ctx.Err())
	case r := <-ch:
		return r.Val.(system.Result[[]*model.MenuNode])
	}
}

func (s *Service) currentGeneration() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// fill 写入缓存，gen 已过期时丢弃
func (s *Service) fill(ctx context.Context, gen uint64, userID uint, forest []*model.MenuNode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.generation != gen {
		s.log.WithField("user_id", userID).Debug("menu cache invalidated during load, skip set")
		return
	}
	if err := s.cache.Set(ctx, userID, forest, s.cacheTTL); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("menu cache set failed")
	}
}

// load 从数据库加载并组装菜单树
func (s *Service) load(ctx context.Context, userID uint) system.Result[[]*model.MenuNode] {
	log := s.log.WithField("user_id", userID)

	isSuperAdmin, err := s.resolver.IsSuperAdmin(ctx, userID)
	if err != nil {
		return s.lookupFailure(log, "is_super_admin", err)
	}

	var (
		allowed MenuIDSet
		ids     []uint
	)
	if !isSuperAdmin {
		if err := ctx.Err(); err != nil {
			return system.FailureWithError[[]*model.MenuNode](system.CodeError, MsgCanceled, err)
		}
		allowed, err = s.resolver.AllowedMenuIDs(ctx, userID)
		if errors.Is(err, system.ErrNoMenusGranted) {
			log.Info("user has no menu grants")
			return system.FailureWithError[[]*model.MenuNode](system.CodeNoMenusGranted, system.ErrNoMenusGranted.Error(), err)
		}
		if err != nil {
			return s.lookupFailure(log, "allowed_menu_ids", err)
		}
		ids = allowed.IDs()
	}

	if err := ctx.Err(); err != nil {
		return system.FailureWithError[[]*model.MenuNode](system.CodeError, MsgCanceled, err)
	}
	flat, err := s.menus.ListVisibleMenus(ctx, ids)
	if err != nil {
		return s.lookupFailure(log, "list_visible_menus", err)
	}

	forest, err := s.tree.Build(flat, allowed)
	if err != nil {
		log.WithError(err).Error("menu tree assembly failed")
		return system.FailureWithError[[]*model.MenuNode](system.CodeInternalError, MsgMenuCorrupt, err)
	}

	log.WithFields(logrus.Fields{
		"super_admin": isSuperAdmin,
		"menu_rows":   len(flat),
		"roots":       len(forest),
	}).Debug("menu tree loaded")
	return system.Success(forest, MsgQuerySuccess)
}

func (s *Service) lookupFailure(log logrus.FieldLogger, step string, err error) system.Result[[]*model.MenuNode] {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return system.FailureWithError[[]*model.MenuNode](system.CodeError, MsgCanceled, err)
	}
	log.WithError(err).WithField("step", step).Error("menu lookup failed")
	return system.FailureWithError[[]*model.MenuNode](system.CodeDatabaseError, MsgQueryFailed, err)
}

// InvalidateUser 清除用户的菜单树缓存(用户角色变更后调用)
func (s *Service) InvalidateUser(ctx context.Context, userID uint) error {
	if s.cache == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.cache.Delete(ctx, userID)
}

// InvalidateAll 清除全部菜单树缓存(角色授权或菜单变更、种子数据重置后调用)
func (s *Service) InvalidateAll(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.cache.Flush(ctx)
}
