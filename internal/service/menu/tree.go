/**
 * 菜单服务:菜单树组装
 * @description: 把平铺的菜单行组装为按 SortOrder 排序的菜单森林
 * @func: TreeBuilder.Build, BuildTree
 */
package menu

import (
	"cmp"
	"fmt"
	"slices"

	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
)

// TreeBuilder 菜单树组装器，无状态，可并发使用
type TreeBuilder struct {
	RootParentID uint // 根菜单的父ID，默认 0
}

// arenaNode 组装期间的节点，children 为 arena 下标
type arenaNode struct {
	menu     *model.Menu
	children []int
}

// BuildTree 使用默认根标记组装菜单树
func BuildTree(flat []model.Menu, allowed MenuIDSet) ([]*model.MenuNode, error) {
	return TreeBuilder{RootParentID: model.RootParentID}.Build(flat, allowed)
}

// Build 组装菜单树
//   - 只保留可见菜单；allowed 非 nil 时只保留集合内的菜单
//   - ParentID 等于根标记的菜单为根；父菜单不在范围内的菜单连同子树一起丢弃
//   - 同级按 SortOrder 升序稳定排序，相同时保持输入顺序
//   - 叶子节点 Children 为 nil
//   - 互为父子(含自引用)的菜单无法从根到达，与父菜单缺失的菜单一样被丢弃
//
// 返回值永远不为 nil；system.ErrMenuCycle 只在组装出的树中重复访问节点时返回
func (b TreeBuilder) Build(flat []model.Menu, allowed MenuIDSet) ([]*model.MenuNode, error) {
	arena := make([]arenaNode, 0, len(flat))
	index := make(map[uint]int, len(flat))

	for i := range flat {
		m := &flat[i]
		if !m.IsVisible {
			continue
		}
		if allowed != nil && !allowed.Contains(m.ID) {
			continue
		}
		if _, dup := index[m.ID]; dup {
			continue
		}
		index[m.ID] = len(arena)
		arena = append(arena, arenaNode{menu: m})
	}

	var roots []int
	for slot := range arena {
		parentID := arena[slot].menu.ParentID
		if parentID == b.RootParentID {
			roots = append(roots, slot)
			continue
		}
		if parent, ok := index[parentID]; ok {
			arena[parent].children = append(arena[parent].children, slot)
		}
	}

	bySortOrder := func(a, c int) int {
		return cmp.Compare(arena[a].menu.SortOrder, arena[c].menu.SortOrder)
	}
	slices.SortStableFunc(roots, bySortOrder)
	for slot := range arena {
		slices.SortStableFunc(arena[slot].children, bySortOrder)
	}

	visited := make([]bool, len(arena))
	forest := make([]*model.MenuNode, 0, len(roots))
	for _, slot := range roots {
		node, err := project(arena, slot, visited)
		if err != nil {
			return nil, err
		}
		forest = append(forest, node)
	}
	return forest, nil
}

// project 把 arena 节点投影为 MenuNode，visited 用于检测循环
func project(arena []arenaNode, slot int, visited []bool) (*model.MenuNode, error) {
	if visited[slot] {
		return nil, fmt.Errorf("%w: menu id %d", system.ErrMenuCycle, arena[slot].menu.ID)
	}
	visited[slot] = true

	m := arena[slot].menu
	node := &model.MenuNode{
		ID:        m.ID,
		MenuName:  m.MenuName,
		MenuCode:  m.MenuCode,
		RoutePath: m.RoutePath,
		Icon:      m.Icon,
		SortOrder: m.SortOrder,
	}

	children := arena[slot].children
	if len(children) == 0 {
		return node, nil
	}
	node.Children = make([]*model.MenuNode, 0, len(children))
	for _, child := range children {
		c, err := project(arena, child, visited)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, c)
	}
	return node, nil
}
