// Package query 纯内存查询引擎：(records, descriptor) → (page, total)。
// 不做任何 IO，契约违规（page/pageSize < 1）之外不报错。
package query

import (
	"sort"
	"strings"
	"time"

	"go-user-console/internal/domain"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// FilterAll role/status 过滤的"不过滤"哨兵值（与空串等价）
const FilterAll = "all"

// Descriptor 一次列表请求的全部筛选/排序/分页参数；随请求重建，不持久化
type Descriptor struct {
	Page      int       `form:"page,default=1" json:"page"`
	PageSize  int       `form:"pageSize,default=20" json:"pageSize"`
	Search    string    `form:"search" json:"search,omitempty"`
	Role      string    `form:"role" json:"role,omitempty"`     // ""/"all" 不过滤
	Status    string    `form:"status" json:"status,omitempty"` // 同上
	SortBy    string    `form:"sortBy" json:"sortBy,omitempty"`
	SortOrder Direction `form:"sortOrder,default=asc" json:"sortOrder,omitempty"`
}

// Page 一页结果；Total 永远是过滤后、分页前的数量
type Page struct {
	Items      []domain.User `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"limit"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
}

// Run 过滤 → 稳定排序 → 切片分页。不修改传入的 records。
func Run(records []domain.User, d Descriptor) (*Page, error) {
	if d.Page < 1 {
		return nil, domain.InvalidArgument("page must be >= 1")
	}
	if d.PageSize < 1 {
		return nil, domain.InvalidArgument("pageSize must be >= 1")
	}

	filtered := filter(records, d)
	sortUsers(filtered, d)

	total := len(filtered)
	totalPages := (total + d.PageSize - 1) / d.PageSize

	start := (d.Page - 1) * d.PageSize
	end := start + d.PageSize
	if start > total {
		start = total // 越界页返回空页，不算错误
	}
	if end > total {
		end = total
	}

	return &Page{
		Items:      filtered[start:end],
		Page:       d.Page,
		PageSize:   d.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// filter 谓词取 AND；search 对 displayName/email/username 任一命中即可
func filter(records []domain.User, d Descriptor) []domain.User {
	search := strings.ToLower(strings.TrimSpace(d.Search))
	role := normalizeFilter(d.Role)
	status := normalizeFilter(d.Status)

	out := make([]domain.User, 0, len(records))
	for _, u := range records {
		if search != "" && !matchSearch(u, search) {
			continue
		}
		if role != "" && string(u.Role) != role {
			continue
		}
		if status != "" && string(u.Status) != status {
			continue
		}
		out = append(out, u)
	}
	return out
}

func normalizeFilter(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == FilterAll {
		return ""
	}
	return v
}

func matchSearch(u domain.User, needle string) bool {
	return strings.Contains(strings.ToLower(u.DisplayName), needle) ||
		strings.Contains(strings.ToLower(u.Email), needle) ||
		strings.Contains(strings.ToLower(u.Username), needle)
}

// sortUsers 稳定排序：同键记录保持原相对顺序；desc 只翻转比较方向。
// SortBy 为空或不认识的字段名保持插入序。
func sortUsers(users []domain.User, d Descriptor) {
	cmp := comparator(d.SortBy)
	if cmp == nil {
		return
	}
	desc := d.SortOrder == Desc
	sort.SliceStable(users, func(i, j int) bool {
		c := cmp(users[i], users[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func comparator(field string) func(a, b domain.User) int {
	switch field {
	case "username":
		return func(a, b domain.User) int { return cmpFold(a.Username, b.Username) }
	case "email":
		return func(a, b domain.User) int { return cmpFold(a.Email, b.Email) }
	case "displayName", "fullName":
		return func(a, b domain.User) int { return cmpFold(a.DisplayName, b.DisplayName) }
	case "department":
		return func(a, b domain.User) int { return cmpFold(a.Department, b.Department) }
	case "location":
		return func(a, b domain.User) int { return cmpFold(a.Location, b.Location) }
	case "role":
		return func(a, b domain.User) int { return cmpFold(string(a.Role), string(b.Role)) }
	case "status":
		return func(a, b domain.User) int { return cmpFold(string(a.Status), string(b.Status)) }
	case "createdAt":
		return func(a, b domain.User) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case "updatedAt":
		return func(a, b domain.User) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case "lastLoginAt":
		return func(a, b domain.User) int { return cmpTimePtr(a.LastLoginAt, b.LastLoginAt) }
	default:
		return nil
	}
}

// cmpFold 字符串一律不区分大小写比较
func cmpFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// cmpTimePtr 空值排最前（从未登录 < 任意登录时间）
func cmpTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}
