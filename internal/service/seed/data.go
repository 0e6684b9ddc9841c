package seed

import "rbacmaster/internal/model"

// DefaultPassword 种子用户的初始密码
const DefaultPassword = "123"

type roleSeed struct {
	Code        string
	Name        string
	Description string
	IsSystem    bool
}

type menuSeed struct {
	Code   string
	Name   string
	Parent string // 父菜单编码，空为根
	Route  string
	Icon   string
	Sort   int
}

type userSeed struct {
	Username string
	RealName string
	Email    string
	Phone    string
	Role     string
	Active   bool
}

var roleSeeds = []roleSeed{
	{Code: model.RoleCodeSuperAdmin, Name: "超级管理员", Description: "拥有系统全部权限", IsSystem: true},
	{Code: model.RoleCodeAdmin, Name: "系统管理员", Description: "负责系统日常管理"},
	{Code: model.RoleCodeManager, Name: "部门经理", Description: "管理部门业务与人员"},
	{Code: model.RoleCodeUser, Name: "普通用户", Description: "使用业务功能"},
	{Code: model.RoleCodeGuest, Name: "访客", Description: "仅可访问个人中心"},
}

// menuSeeds 按层级排列，父菜单总在子菜单之前
var menuSeeds = []menuSeed{
	// 一级菜单
	{Code: "system", Name: "系统管理", Icon: "Settings", Sort: 1},
	{Code: "business", Name: "业务管理", Icon: "BusinessCenter", Sort: 2},
	{Code: "profile", Name: "个人中心", Icon: "Person", Sort: 3},

	// 二级菜单
	{Code: "user-mgr", Name: "用户管理", Parent: "system", Icon: "People", Sort: 1},
	{Code: "role-mgr", Name: "角色管理", Parent: "system", Icon: "Shield", Sort: 2},
	{Code: "menu-mgr", Name: "菜单管理", Parent: "system", Icon: "Menu", Sort: 3},
	{Code: "log-mgr", Name: "日志管理", Parent: "system", Icon: "Description", Sort: 4},
	{Code: "order-mgr", Name: "订单管理", Parent: "business", Icon: "ShoppingCart", Sort: 1},
	{Code: "product-mgr", Name: "产品管理", Parent: "business", Icon: "Inventory", Sort: 2},
	{Code: "customer-mgr", Name: "客户管理", Parent: "business", Icon: "Group", Sort: 3},
	{Code: "profile-info", Name: "个人信息", Parent: "profile", Icon: "AccountCircle", Sort: 1},
	{Code: "change-pwd", Name: "修改密码", Parent: "profile", Icon: "Lock", Sort: 2},

	// 三级菜单
	{Code: "user-list", Name: "用户列表", Parent: "user-mgr", Route: "/admin/users/list", Sort: 1},
	{Code: "user-add", Name: "添加用户", Parent: "user-mgr", Route: "/admin/users/add", Sort: 2},
	{Code: "role-list", Name: "角色列表", Parent: "role-mgr", Route: "/admin/roles/list", Sort: 1},
	{Code: "role-perm", Name: "权限分配", Parent: "role-mgr", Route: "/admin/roles/permission", Sort: 2},
	{Code: "order-list", Name: "订单列表", Parent: "order-mgr", Route: "/business/orders/list", Sort: 1},
	{Code: "order-stats", Name: "订单统计", Parent: "order-mgr", Route: "/business/orders/stats", Sort: 2},
}

var userSeeds = []userSeed{
	{Username: "admin", RealName: "系统管理员", Email: "admin@blazorrbac.com", Phone: "13800138000", Role: model.RoleCodeSuperAdmin, Active: true},
	{Username: "admin2", RealName: "张三", Email: "zhangsan@blazorrbac.com", Phone: "13800138001", Role: model.RoleCodeAdmin, Active: true},
	{Username: "manager", RealName: "李四", Email: "lisi@blazorrbac.com", Phone: "13800138002", Role: model.RoleCodeManager, Active: true},
	{Username: "manager2", RealName: "王五", Email: "wangwu@blazorrbac.com", Phone: "13800138003", Role: model.RoleCodeManager, Active: true},
	{Username: "user1", RealName: "赵六", Email: "user1@blazorrbac.com", Phone: "13800138004", Role: model.RoleCodeUser, Active: true},
	{Username: "user2", RealName: "钱七", Email: "user2@blazorrbac.com", Phone: "13800138005", Role: model.RoleCodeUser, Active: true},
	{Username: "user3", RealName: "孙八", Email: "user3@blazorrbac.com", Phone: "13800138006", Role: model.RoleCodeUser, Active: true},
	{Username: "test", RealName: "测试用户", Email: "test@blazorrbac.com", Phone: "13800138007", Role: model.RoleCodeUser, Active: true},
	{Username: "guest1", RealName: "访客一", Email: "guest1@blazorrbac.com", Phone: "13800138008", Role: model.RoleCodeGuest, Active: true},
	{Username: "guest2", RealName: "访客二", Email: "guest2@blazorrbac.com", Phone: "13800138009", Role: model.RoleCodeGuest, Active: false},
}

// grantCodes 计算各角色被授权的菜单编码(保持 menuSeeds 顺序，去重)
func grantCodes() map[string][]string {
	parentOf := make(map[string]string, len(menuSeeds))
	for _, m := range menuSeeds {
		parentOf[m.Code] = m.Parent
	}
	under := func(codes ...string) func(menuSeed) bool {
		set := make(map[string]bool, len(codes))
		for _, c := range codes {
			set[c] = true
		}
		return func(m menuSeed) bool { return set[m.Parent] }
	}
	is := func(codes ...string) func(menuSeed) bool {
		set := make(map[string]bool, len(codes))
		for _, c := range codes {
			set[c] = true
		}
		return func(m menuSeed) bool { return set[m.Code] }
	}
	pick := func(preds ...func(menuSeed) bool) []string {
		var out []string
		for _, m := range menuSeeds {
			for _, p := range preds {
				if p(m) {
					out = append(out, m.Code)
					break
				}
			}
		}
		return out
	}

	return map[string][]string{
		model.RoleCodeSuperAdmin: pick(func(menuSeed) bool { return true }),
		model.RoleCodeAdmin:      pick(func(m menuSeed) bool { return m.Code != "log-mgr" }),
		model.RoleCodeManager: pick(
			is("system", "user-mgr", "role-mgr", "business", "order-mgr", "profile"),
			under("business", "profile"),
			under("user-mgr", "role-mgr", "order-mgr"),
		),
		model.RoleCodeUser: pick(
			is("business", "profile"),
			under("business", "profile"),
			under(pick(under("business", "profile"))...),
		),
		model.RoleCodeGuest: pick(is("profile", "profile-info")),
	}
}
