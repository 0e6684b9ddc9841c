package menu

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rbacmaster/internal/model"
	basemodel "rbacmaster/internal/model/basemodel"
	"rbacmaster/internal/model/system"
)

func menuRow(id, parentID uint, code string, sortOrder int, visible bool) model.Menu {
	return model.Menu{
		AuditModel: basemodel.AuditModel{BaseModel: basemodel.BaseModel{ID: id}},
		ParentID:   parentID,
		MenuName:   code,
		MenuCode:   code,
		SortOrder:  sortOrder,
		IsVisible:  visible,
	}
}

// collect 先序遍历返回所有节点ID
func collect(forest []*model.MenuNode) []uint {
	var ids []uint
	var walk func(nodes []*model.MenuNode)
	walk = func(nodes []*model.MenuNode) {
		for _, n := range nodes {
			ids = append(ids, n.ID)
			walk(n.Children)
		}
	}
	walk(forest)
	return ids
}

func TestBuildTree_TwoLevels(t *testing.T) {
	flat := []model.Menu{
		menuRow(1, 0, "system", 1, true),
		menuRow(2, 0, "profile", 2, true),
		menuRow(3, 1, "user-mgr", 1, true),
		menuRow(4, 1, "role-mgr", 2, true),
		menuRow(5, 2, "profile-info", 1, true),
	}

	forest, err := BuildTree(flat, nil)
	require.NoError(t, err)
	require.Len(t, forest, 2)

	assert.Equal(t, "system", forest[0].MenuCode)
	require.Len(t, forest[0].Children, 2)
	assert.Equal(t, "user-mgr", forest[0].Children[0].MenuCode)
	assert.Equal(t, "role-mgr", forest[0].Children[1].MenuCode)
	assert.Equal(t, "profile-info", forest[1].Children[0].MenuCode)

	// 叶子节点没有子节点集合
	assert.Nil(t, forest[0].Children[0].Children)
	assert.True(t, forest[0].Children[0].IsLeaf())
}

func TestBuildTree_FiltersInvisibleAndDisallowed(t *testing.T) {
	flat := []model.Menu{
		menuRow(1, 0, "system", 1, true),
		menuRow(2, 1, "user-mgr", 1, true),
		menuRow(3, 1, "log-mgr", 2, false),
		menuRow(4, 0, "business", 2, true),
	}

	forest, err := BuildTree(flat, NewMenuIDSet(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, collect(forest))
}

func TestBuildTree_OrphanDroppedWithSubtree(t *testing.T) {
	flat := []model.Menu{
		menuRow(1, 0, "system", 1, true),
		menuRow(10, 1, "user-mgr", 1, true),
		menuRow(11, 10, "user-list", 1, true),
		menuRow(20, 0, "profile", 2, true),
	}

	// 父菜单 1 未授权：10 及其子树 11 被丢弃，不会提升为根
	forest, err := BuildTree(flat, NewMenuIDSet(10, 11, 20))
	require.NoError(t, err)
	assert.Equal(t, []uint{20}, collect(forest))

	// 父菜单不可见同样丢弃
	flat[0].IsVisible = false
	forest, err = BuildTree(flat, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{20}, collect(forest))
}

func TestBuildTree_StableSiblingOrder(t *testing.T) {
	flat := []model.Menu{
		menuRow(7, 0, "b", 1, true),
		menuRow(3, 0, "a", 1, true),
		menuRow(5, 0, "first", 0, true),
		menuRow(9, 7, "child-z", 2, true),
		menuRow(8, 7, "child-y", 2, true),
		menuRow(6, 7, "child-x", 1, true),
	}

	forest, err := BuildTree(flat, nil)
	require.NoError(t, err)
	// 相同 sort_order 保持输入顺序
	assert.Equal(t, []uint{5, 7, 6, 9, 8, 3}, collect(forest))
}

func TestBuildTree_Idempotent(t *testing.T) {
	flat := []model.Menu{
		menuRow(1, 0, "system", 2, true),
		menuRow(2, 0, "business", 1, true),
		menuRow(3, 2, "order-mgr", 1, true),
		menuRow(4, 3, "order-list", 1, true),
	}

	first, err := BuildTree(flat, nil)
	require.NoError(t, err)
	second, err := BuildTree(flat, nil)
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, []uint{2, 3, 4, 1}, collect(first))
}

func TestBuildTree_EmptyInputIsEmptyForest(t *testing.T) {
	forest, err := BuildTree(nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, forest)
	assert.Empty(t, forest)

	raw, _ := json.Marshal(forest)
	assert.Equal(t, "[]", string(raw))
}

func TestBuildTree_CycleNotReachableFromRoot(t *testing.T) {
	flat := []model.Menu{
		menuRow(1, 0, "root", 1, true),
		menuRow(2, 3, "loop-a", 1, true),
		menuRow(3, 2, "loop-b", 1, true),
		menuRow(4, 4, "self", 1, true),
		menuRow(5, 2, "under-loop", 1, true),
		menuRow(6, 1, "child", 1, true),
	}

	// 循环及其下挂菜单静默丢弃，不影响其余菜单
	forest, err := BuildTree(flat, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 6}, collect(forest))

	scoped, err := BuildTree(flat, NewMenuIDSet(1, 2, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, collect(scoped))
}

func TestBuildTree_DuplicateRowsKeepFirst(t *testing.T) {
	flat := []model.Menu{
		menuRow(1, 0, "root", 1, true),
		menuRow(2, 1, "child", 1, true),
		menuRow(2, 1, "child-dup", 1, true),
	}
	forest, err := BuildTree(flat, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, collect(forest))
	assert.Equal(t, "child", forest[0].Children[0].MenuCode)
}

func TestProject_DetectsCycle(t *testing.T) {
	a := menuRow(1, 2, "a", 1, true)
	b := menuRow(2, 1, "b", 1, true)
	arena := []arenaNode{
		{menu: &a, children: []int{1}},
		{menu: &b, children: []int{0}},
	}

	_, err := project(arena, 0, make([]bool, len(arena)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, system.ErrMenuCycle))
}

func TestTreeBuilder_CustomRoot(t *testing.T) {
	flat := []model.Menu{
		menuRow(1, 100, "top", 1, true),
		menuRow(2, 1, "child", 1, true),
		menuRow(3, 0, "zero-parent", 1, true),
	}
	forest, err := TreeBuilder{RootParentID: 100}.Build(flat, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, collect(forest))
}

func TestMenuIDSet(t *testing.T) {
	set := NewMenuIDSet(5, 1, 3, 1)
	assert.Len(t, set, 3)
	assert.True(t, set.Contains(3))
	assert.False(t, set.Contains(2))
	assert.Equal(t, []uint{1, 3, 5}, set.IDs())
}
