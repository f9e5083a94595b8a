// Package adapter 负责三个形态之间的换算：
// 后端线上形态（拆分姓名 + roleId）↔ 规范实体 ↔ 展示形态（fullName + 角色标签 + 相对时间）。
// 全部纯函数，映射必须确定且可往返。
package adapter

import (
	"fmt"
	"strings"
	"time"

	"go-user-console/internal/domain"
)

// APIUser 真实后端的用户线上形态
type APIUser struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Phone       string     `json:"phone"`
	Department  string     `json:"department"`
	Location    string     `json:"location"`
	RoleID      string     `json:"roleId"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// CreateRequest 发给后端的创建/更新请求体
type CreateRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Location   string `json:"location,omitempty"`
	RoleID     string `json:"roleId"`
}

// DisplayUser 表格/表单消费的展示形态
type DisplayUser struct {
	ID         string        `json:"id"`
	FullName   string        `json:"fullName"`
	Username   string        `json:"username"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone,omitempty"`
	Department string        `json:"department,omitempty"`
	Location   string        `json:"location,omitempty"`
	Role       domain.Role   `json:"role"`
	RoleLabel  string        `json:"roleLabel"`
	Status     domain.Status `json:"status"`
	LastLogin  string        `json:"lastLogin"` // 相对时间串，从未登录为 "never"
	CreatedAt  time.Time     `json:"createdAt"`
}

// roleByID 后端角色标识 → 枚举的固定查表；认不出走 domain.ParseRole 的默认值
var roleByID = map[string]domain.Role{
	"admin":   domain.RoleAdmin,
	"manager": domain.RoleManager,
	"user":    domain.RoleUser,
	"guest":   domain.RoleGuest,
}

var idByRole = map[domain.Role]string{
	domain.RoleAdmin:   "admin",
	domain.RoleManager: "manager",
	domain.RoleUser:    "user",
	domain.RoleGuest:   "guest",
}

var roleLabels = map[domain.Role]string{
	domain.RoleAdmin:   "Administrator",
	domain.RoleManager: "Manager",
	domain.RoleUser:    "User",
	domain.RoleGuest:   "Guest",
}

func RoleFromID(id string) domain.Role {
	if r, ok := roleByID[strings.ToLower(strings.TrimSpace(id))]; ok {
		return r
	}
	return domain.RoleUser
}

func RoleID(r domain.Role) string {
	if id, ok := idByRole[r]; ok {
		return id
	}
	return idByRole[domain.RoleUser]
}

func RoleLabel(r domain.Role) string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return roleLabels[domain.RoleUser]
}

// FromAPI 线上形态 → 规范实体。姓名拼接、角色查表、状态兜底 active。
func FromAPI(a APIUser) domain.User {
	status := domain.Status(strings.ToLower(strings.TrimSpace(a.Status)))
	if !status.Valid() {
		status = domain.StatusActive
	}
	return domain.User{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		DisplayName: JoinName(a.FirstName, a.LastName),
		Phone:       a.Phone,
		Department:  a.Department,
		Location:    a.Location,
		Role:        RoleFromID(a.RoleID),
		Status:      status,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		DeletedAt:   a.DeletedAt,
		LastLoginAt: a.LastLoginAt,
	}
}

// ToCreateRequest 规范创建入参 → 后端请求体（fullName 按首个空格拆分）
func ToCreateRequest(in domain.NewUser) CreateRequest {
	first, last := SplitName(in.DisplayName)
	return CreateRequest{
		Username:   in.Username,
		Email:      in.Email,
		FirstName:  first,
		LastName:   last,
		Phone:      in.Phone,
		Department: in.Department,
		Location:   in.Location,
		RoleID:     RoleID(in.Role),
	}
}

// UpdateRequest 发给后端的部分更新请求体；nil 字段不下发
type UpdateRequest struct {
	Username   *string `json:"username,omitempty"`
	Email      *string `json:"email,omitempty"`
	FirstName  *string `json:"firstName,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Department *string `json:"department,omitempty"`
	Location   *string `json:"location,omitempty"`
	RoleID     *string `json:"roleId,omitempty"`
	Status     *string `json:"status,omitempty"`
}

// ToUpdateRequest 规范补丁 → 后端请求体；displayName 同样按首空格拆分
func ToUpdateRequest(p domain.UserPatch) UpdateRequest {
	out := UpdateRequest{
		Username:   p.Username,
		Email:      p.Email,
		Phone:      p.Phone,
		Department: p.Department,
		Location:   p.Location,
	}
	if p.DisplayName != nil {
		first, last := SplitName(*p.DisplayName)
		out.FirstName = &first
		out.LastName = &last
	}
	if p.Role != nil {
		id := RoleID(*p.Role)
		out.RoleID = &id
	}
	if p.Status != nil {
		s := string(*p.Status)
		out.Status = &s
	}
	return out
}

// ToDisplay 规范实体 → 展示形态；now 由调用方传入保证可测
func ToDisplay(u domain.User, now time.Time) DisplayUser {
	last := "never"
	if u.LastLoginAt != nil {
		last = RelativeTime(now, *u.LastLoginAt)
	}
	return DisplayUser{
		ID:         u.ID,
		FullName:   u.DisplayName,
		Username:   u.Username,
		Email:      u.Email,
		Phone:      u.Phone,
		Department: u.Department,
		Location:   u.Location,
		Role:       u.Role,
		RoleLabel:  RoleLabel(u.Role),
		Status:     u.Status,
		LastLogin:  last,
		CreatedAt:  u.CreatedAt,
	}
}

// JoinName 拼接时统一压缩空白，保证 Split/Join 往返无损
func JoinName(first, last string) string {
	return strings.Join(strings.Fields(first+" "+last), " ")
}

// SplitName 首个空格前是名，剩余全部是姓（"Mary Anne Smith" → "Mary" / "Anne Smith"）
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// RelativeTime 固定阈值的相对时间串；超过 30 天给绝对日期
func RelativeTime(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d weeks ago", int(d.Hours()/(24*7)))
	default:
		return t.Format("2006-01-02")
	}
}
