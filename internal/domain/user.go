package domain

import (
	"net/mail"
	"strings"
	"time"
)

// Role 固定枚举；上游给出的未知标识一律回落到 RoleUser
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
	RoleGuest   Role = "guest"
)

// ParseRole 全量映射：不做子串猜测，认不出就给默认值
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleManager:
		return RoleManager
	case RoleUser:
		return RoleUser
	case RoleGuest:
		return RoleGuest
	default:
		return RoleUser
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser, RoleGuest:
		return true
	}
	return false
}

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive" // 软删后的状态
	StatusSuspended Status = "suspended"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// User 规范实体；DeletedAt 非空即软删（此时 Status 必为 inactive）
type User struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"` // 唯一性按小写比较
	DisplayName string     `json:"displayName"`
	Phone       string     `json:"phone,omitempty"`
	Department  string     `json:"department,omitempty"`
	Location    string     `json:"location,omitempty"`
	Role        Role       `json:"role"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"` // 由认证子系统维护，这里只读
}

func (u *User) Deleted() bool { return u.DeletedAt != nil }

// Clone 深拷贝（指针字段单独复制），存储层对外必须交副本
func (u User) Clone() User {
	c := u
	if u.DeletedAt != nil {
		t := *u.DeletedAt
		c.DeletedAt = &t
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return c
}

// NewUser 创建入参（id / 时间戳由存储侧生成）
type NewUser struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Phone       string `json:"phone"`
	Department  string `json:"department"`
	Location    string `json:"location"`
	Role        Role   `json:"role"`
}

// Validate 创建必填项 + 邮箱格式；错误带字段名，前端按字段内联展示
func (in NewUser) Validate() error {
	if strings.TrimSpace(in.Username) == "" {
		return Validation("username", "username is required")
	}
	if strings.TrimSpace(in.DisplayName) == "" {
		return Validation("displayName", "display name is required")
	}
	if err := ValidateEmail(in.Email); err != nil {
		return err
	}
	if !in.Role.Valid() {
		return Validation("role", "unknown role")
	}
	return nil
}

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return Validation("email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Validation("email", "invalid email format")
	}
	return nil
}

// UserPatch 更新入参；nil 表示不改该字段
type UserPatch struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	DisplayName *string `json:"displayName"`
	Phone       *string `json:"phone"`
	Department  *string `json:"department"`
	Location    *string `json:"location"`
	Role        *Role   `json:"role"`
	Status      *Status `json:"status"`
}

// Apply 把补丁合并到记录上（不碰时间戳，由调用方负责）
func (p UserPatch) Apply(u *User) error {
	if p.Username != nil {
		if strings.TrimSpace(*p.Username) == "" {
			return Validation("username", "username cannot be empty")
		}
		u.Username = *p.Username
	}
	if p.Email != nil {
		if err := ValidateEmail(*p.Email); err != nil {
			return err
		}
		u.Email = *p.Email
	}
	if p.DisplayName != nil {
		if strings.TrimSpace(*p.DisplayName) == "" {
			return Validation("displayName", "display name cannot be empty")
		}
		u.DisplayName = *p.DisplayName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.Role != nil {
		if !p.Role.Valid() {
			return Validation("role", "unknown role")
		}
		u.Role = *p.Role
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return Validation("status", "unknown status")
		}
		u.Status = *p.Status
	}
	return nil
}
