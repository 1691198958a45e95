package auth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
)

// Role 定義報表系統角色。
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
	RoleViewer  Role = "viewer"
)

// Permission 表示報表功能權限。
type Permission string

const (
	PermReportsRead     Permission = "reports:read"
	PermExportCSV       Permission = "export:csv"
	PermIngestionReload Permission = "ingestion:reload"
	PermSystemHealth    Permission = "system:health"
)

// rolePermissions: viewer 只能看報表，analyst 另可匯出，admin 可重新載入資料。
var rolePermissions = map[Role][]Permission{
	RoleAdmin:   {PermReportsRead, PermExportCSV, PermIngestionReload, PermSystemHealth},
	RoleAnalyst: {PermReportsRead, PermExportCSV, PermSystemHealth},
	RoleViewer:  {PermReportsRead},
}

// ParseRole 解析資料庫或 token 中的角色字串。
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rolePermissions[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Can 檢查角色是否具備權限；未知角色一律拒絕。
func (r Role) Can(perm Permission) bool {
	for _, p := range rolePermissions[r] {
		if p == perm {
			return true
		}
	}
	return false
}

// Permissions 回傳角色的權限清單副本。
func (r Role) Permissions() []Permission {
	return append([]Permission(nil), rolePermissions[r]...)
}

// Status 定義帳號狀態。
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// User 報表系統帳號。
type User struct {
	ID       string
	Email    string
	Name     string
	Role     Role
	Status   Status
	Password string // bcrypt hash
}

// NormalizeEmail email 比對一律忽略大小寫與前後空白。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate 回傳所有缺漏欄位。
func (u User) Validate() error {
	var errs []error
	if u.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if u.Email == "" {
		errs = append(errs, errors.New("email is required"))
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		errs = append(errs, err)
	}
	if u.Status != StatusActive && u.Status != StatusDisabled {
		errs = append(errs, fmt.Errorf("unknown status %q", u.Status))
	}
	return errors.Join(errs...)
}

// IsActive 檢查是否可登入。
func (u User) IsActive() bool {
	return u.Status == StatusActive
}

// SeedAccount 為啟動時建立的預設帳號。
type SeedAccount struct {
	Email string
	Name  string
	Role  Role
}

// DefaultPassword 預設帳號的密碼，僅供開發與 demo。
const DefaultPassword = "password123"

// DefaultAccounts 每個角色各一個帳號。
var DefaultAccounts = []SeedAccount{
	{Email: "admin@example.com", Name: "Admin", Role: RoleAdmin},
	{Email: "analyst@example.com", Name: "Analyst", Role: RoleAnalyst},
	{Email: "viewer@example.com", Name: "Viewer", Role: RoleViewer},
}
