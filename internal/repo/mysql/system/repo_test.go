package system

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rbacmaster/internal/model"
	"rbacmaster/internal/model/system"
)

// setupSystemDB 创建内存数据库并迁移表结构
func setupSystemDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Role{}, &model.Menu{}, &model.UserRole{}, &model.RoleMenu{}))
	return db
}

type fixture struct {
	superAdmin, admin, plain, inactive, orphan model.User
	sysRole, adminRole, userRole               model.Role
	root, child, hidden, other                 model.Menu
}

// seedFixture 写入最小数据集：
// superAdmin -> SuperAdmin(系统角色)；admin -> Admin + User；plain -> User；inactive(禁用) -> User；orphan 无角色
func seedFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{}

	f.sysRole = model.Role{RoleName: "超级管理员", RoleCode: model.RoleCodeSuperAdmin, IsSystem: true}
	f.adminRole = model.Role{RoleName: "系统管理员", RoleCode: model.RoleCodeAdmin}
	f.userRole = model.Role{RoleName: "普通用户", RoleCode: model.RoleCodeUser}
	for _, r := range []*model.Role{&f.sysRole, &f.adminRole, &f.userRole} {
		require.NoError(t, db.Create(r).Error)
	}

	f.root = model.Menu{MenuName: "系统管理", MenuCode: "system", SortOrder: 1, IsVisible: true}
	require.NoError(t, db.Create(&f.root).Error)
	f.child = model.Menu{ParentID: f.root.ID, MenuName: "用户管理", MenuCode: "user-mgr", SortOrder: 1, IsVisible: true}
	f.hidden = model.Menu{ParentID: f.root.ID, MenuName: "隐藏", MenuCode: "hidden", SortOrder: 0, IsVisible: false}
	f.other = model.Menu{MenuName: "个人中心", MenuCode: "profile", SortOrder: 1, IsVisible: true}
	for _, m := range []*model.Menu{&f.child, &f.hidden, &f.other} {
		require.NoError(t, db.Create(m).Error)
	}

	mk := func(name string, active bool) model.User {
		u := model.User{Username: name, PasswordHash: "x", LoginType: model.LoginTypeLocal, IsActive: active}
		require.NoError(t, db.Create(&u).Error)
		return u
	}
	f.superAdmin = mk("admin", true)
	f.admin = mk("admin2", true)
	f.plain = mk("user1", true)
	f.inactive = mk("guest2", false)
	f.orphan = mk("nobody", true)

	require.NoError(t, db.Create(&[]model.UserRole{
		{UserID: f.superAdmin.ID, RoleID: f.sysRole.ID},
		{UserID: f.admin.ID, RoleID: f.adminRole.ID},
		{UserID: f.admin.ID, RoleID: f.userRole.ID},
		{UserID: f.plain.ID, RoleID: f.userRole.ID},
		{UserID: f.inactive.ID, RoleID: f.userRole.ID},
	}).Error)

	require.NoError(t, db.Create(&[]model.RoleMenu{
		{RoleID: f.adminRole.ID, MenuID: f.root.ID},
		{RoleID: f.adminRole.ID, MenuID: f.child.ID},
		{RoleID: f.userRole.ID, MenuID: f.child.ID},
		{RoleID: f.userRole.ID, MenuID: f.other.ID},
	}).Error)

	return f
}

func TestRoleRepository_MembershipsOf(t *testing.T) {
	db := setupSystemDB(t)
	f := seedFixture(t, db)
	repo := NewRoleRepository(db)
	ctx := context.Background()

	ms, err := repo.MembershipsOf(ctx, f.superAdmin.ID)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.True(t, ms[0].IsSystem)
	assert.Equal(t, f.sysRole.ID, ms[0].RoleID)

	ms, err = repo.MembershipsOf(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.RoleMembership{
		{RoleID: f.adminRole.ID, IsSystem: false},
		{RoleID: f.userRole.ID, IsSystem: false},
	}, ms)

	ms, err = repo.MembershipsOf(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, ms)
}

func TestRoleRepository_GetRoleByCode(t *testing.T) {
	db := setupSystemDB(t)
	seedFixture(t, db)
	repo := NewRoleRepository(db)

	role, err := repo.GetRoleByCode(context.Background(), model.RoleCodeAdmin)
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, "系统管理员", role.RoleName)

	role, err = repo.GetRoleByCode(context.Background(), "Nope")
	assert.NoError(t, err)
	assert.Nil(t, role)

	roles, err := repo.ListRoles(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, 3)
}

func TestMenuRepository_MenuGrantsOf(t *testing.T) {
	db := setupSystemDB(t)
	f := seedFixture(t, db)
	repo := NewMenuRepository(db)
	ctx := context.Background()

	// admin2 同时拥有 Admin 与 User，child 被两个角色授权，结果去重
	ids, err := repo.MenuGrantsOf(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.root.ID, f.child.ID, f.other.ID}, ids)

	ids, err = repo.MenuGrantsOf(ctx, f.orphan.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMenuRepository_ListVisibleMenus(t *testing.T) {
	db := setupSystemDB(t)
	f := seedFixture(t, db)
	repo := NewMenuRepository(db)
	ctx := context.Background()

	all, err := repo.ListVisibleMenus(ctx, nil)
	require.NoError(t, err)
	// sort_order 相同时按 id 升序，隐藏菜单被过滤
	codes := make([]string, 0, len(all))
	for _, m := range all {
		codes = append(codes, m.MenuCode)
	}
	assert.Equal(t, []string{"system", "user-mgr", "profile"}, codes)

	scoped, err := repo.ListVisibleMenus(ctx, []uint{f.child.ID, f.hidden.ID})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, f.child.ID, scoped[0].ID)

	none, err := repo.ListVisibleMenus(ctx, []uint{})
	require.NoError(t, err)
	assert.Empty(t, none)

	menu, err := repo.GetMenuByID(ctx, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, "profile", menu.MenuCode)

	menu, err = repo.GetMenuByID(ctx, 12345)
	assert.NoError(t, err)
	assert.Nil(t, menu)

	allIDs, err := repo.ListMenuIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, allIDs, 4)
}

func TestUserRepository_Lookups(t *testing.T) {
	db := setupSystemDB(t)
	f := seedFixture(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u, err := repo.GetUserByUsername(ctx, "guest2")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.False(t, u.IsActive)

	u, err = repo.GetActiveUserByUsername(ctx, "guest2")
	assert.NoError(t, err)
	assert.Nil(t, u)

	u, err = repo.GetUserByID(ctx, 424242)
	assert.NoError(t, err)
	assert.Nil(t, u)

	exists, err := repo.UsernameExists(ctx, "user1")
	require.NoError(t, err)
	assert.True(t, exists)

	active, err := repo.IsUserActive(ctx, f.inactive.ID)
	require.NoError(t, err)
	assert.False(t, active)

	codes, err := repo.GetUserRoleCodes(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{model.RoleCodeAdmin, model.RoleCodeUser}, codes)
}

func TestUserRepository_CreateUserWithRole(t *testing.T) {
	db := setupSystemDB(t)
	seedFixture(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &model.User{Username: "newbie", PasswordHash: "h", LoginType: model.LoginTypeLocal, IsActive: true}
	require.NoError(t, repo.CreateUserWithRole(ctx, u, model.RoleCodeUser))
	assert.NotZero(t, u.ID)

	codes, err := repo.GetUserRoleCodes(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{model.RoleCodeUser}, codes)

	// 角色不存在时整个事务回滚
	ghost := &model.User{Username: "ghost", PasswordHash: "h", LoginType: model.LoginTypeLocal, IsActive: true}
	err = repo.CreateUserWithRole(ctx, ghost, "Missing")
	assert.ErrorIs(t, err, system.ErrRoleNotFound)

	exists, err := repo.UsernameExists(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_AssignRoleByCodeIsIdempotent(t *testing.T) {
	db := setupSystemDB(t)
	f := seedFixture(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.AssignRoleByCode(ctx, f.plain.ID, f.userRole.RoleCode))
	require.NoError(t, repo.AssignRoleByCode(ctx, f.plain.ID, f.adminRole.RoleCode))

	codes, err := repo.GetUserRoleCodes(ctx, f.plain.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{model.RoleCodeAdmin, model.RoleCodeUser}, codes)

	assert.ErrorIs(t, repo.AssignRoleByCode(ctx, 999, f.adminRole.RoleCode), system.ErrUserNotFound)
	assert.ErrorIs(t, repo.AssignRoleByCode(ctx, f.plain.ID, "Missing"), system.ErrRoleNotFound)
}

func TestUserRepository_SetUserActiveBumpsVersion(t *testing.T) {
	db := setupSystemDB(t)
	f := seedFixture(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SetUserActive(ctx, f.plain.ID, false))

	var reloaded model.User
	require.NoError(t, db.First(&reloaded, f.plain.ID).Error)
	assert.False(t, reloaded.IsActive)
	assert.Equal(t, f.plain.Version+1, reloaded.Version)

	assert.ErrorIs(t, repo.SetUserActive(ctx, 999, true), system.ErrUserNotFound)
}
