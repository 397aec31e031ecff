package circulation

// Role 读者角色
type Role string

const (
	RoleReader    Role = "reader"
	RoleLibrarian Role = "librarian"
)

// ParseRole 解析角色,未知角色按普通读者处理
func ParseRole(s string) Role {
	if Role(s) == RoleLibrarian {
		return RoleLibrarian
	}
	return RoleReader
}

// Permission 已认证的调用者身份
// 由HTTP中间件从JWT中解析后显式传入每个用例,流通引擎本身不做认证
type Permission struct {
	UserID uint
	Role   Role
}

// IsLibrarian 是否为馆员
func (p Permission) IsLibrarian() bool {
	return p.Role == RoleLibrarian
}

// Valid 身份是否有效
func (p Permission) Valid() bool {
	return p.UserID != 0
}
