package store

import (
	"time"

	"go-user-console/internal/domain"
)

// SeedUsers 内置演示数据；时间相对 now 回推，保证列表排序/相对时间展示有层次
func SeedUsers(now time.Time) []domain.User {
	mk := func(daysAgo int) time.Time { return now.Add(-time.Duration(daysAgo) * 24 * time.Hour) }
	login := func(d time.Duration) *time.Time { t := now.Add(-d); return &t }

	users := []domain.User{
		{
			ID: "u-0001", Username: "alice.wang", Email: "alice.wang@example.com",
			DisplayName: "Alice Wang", Phone: "+86-138-0000-0001", Department: "Platform",
			Location: "Shanghai", Role: domain.RoleAdmin, Status: domain.StatusActive,
			CreatedAt: mk(400), UpdatedAt: mk(12), LastLoginAt: login(30 * time.Second),
		},
		{
			ID: "u-0002", Username: "bob.chen", Email: "bob.chen@example.com",
			DisplayName: "Bob Chen", Department: "Platform", Location: "Beijing",
			Role: domain.RoleManager, Status: domain.StatusActive,
			CreatedAt: mk(380), UpdatedAt: mk(40), LastLoginAt: login(25 * time.Minute),
		},
		{
			ID: "u-0003", Username: "carol.liu", Email: "carol.liu@example.com",
			DisplayName: "Carol Liu", Phone: "+86-138-0000-0003", Department: "Billing",
			Location: "Shenzhen", Role: domain.RoleUser, Status: domain.StatusActive,
			CreatedAt: mk(300), UpdatedAt: mk(3), LastLoginAt: login(5 * time.Hour),
		},
		{
			ID: "u-0004", Username: "david.zhao", Email: "david.zhao@example.com",
			DisplayName: "David Zhao", Department: "Billing", Location: "Shenzhen",
			Role: domain.RoleUser, Status: domain.StatusSuspended,
			CreatedAt: mk(290), UpdatedAt: mk(90), LastLoginAt: login(3 * 24 * time.Hour),
		},
		{
			ID: "u-0005", Username: "eva.sun", Email: "eva.sun@example.com",
			DisplayName: "Eva Sun", Department: "Support", Location: "Chengdu",
			Role: domain.RoleUser, Status: domain.StatusActive,
			CreatedAt: mk(200), UpdatedAt: mk(20), LastLoginAt: login(12 * 24 * time.Hour),
		},
		{
			ID: "u-0006", Username: "frank.li", Email: "frank.li@example.com",
			DisplayName: "Frank Li", Phone: "+86-138-0000-0006", Department: "Support",
			Location: "Chengdu", Role: domain.RoleManager, Status: domain.StatusActive,
			CreatedAt: mk(180), UpdatedAt: mk(60), LastLoginAt: login(45 * 24 * time.Hour),
		},
		{
			ID: "u-0007", Username: "grace.zhou", Email: "grace.zhou@example.com",
			DisplayName: "Grace Zhou", Department: "Data", Location: "Hangzhou",
			Role: domain.RoleUser, Status: domain.StatusActive,
			CreatedAt: mk(120), UpdatedAt: mk(10),
		},
		{
			ID: "u-0008", Username: "henry.wu", Email: "henry.wu@example.com",
			DisplayName: "Henry Wu", Department: "Data", Location: "Hangzhou",
			Role: domain.RoleGuest, Status: domain.StatusActive,
			CreatedAt: mk(60), UpdatedAt: mk(5), LastLoginAt: login(6 * 24 * time.Hour),
		},
		{
			ID: "u-0009", Username: "iris.xu", Email: "iris.xu@example.com",
			DisplayName: "Iris Xu", Department: "Platform", Location: "Shanghai",
			Role: domain.RoleUser, Status: domain.StatusActive,
			CreatedAt: mk(30), UpdatedAt: mk(2), LastLoginAt: login(90 * time.Minute),
		},
		{
			ID: "u-0010", Username: "jack.ma", Email: "jack.ma@example.com",
			DisplayName: "Jack Ma Yun", Department: "Billing", Location: "Hangzhou",
			Role: domain.RoleUser, Status: domain.StatusActive,
			CreatedAt: mk(10), UpdatedAt: mk(1), LastLoginAt: login(10 * time.Minute),
		},
	}

	// 一条软删记录，演示 restore / with-deleted 过滤
	del := mk(15)
	users = append(users, domain.User{
		ID: "u-0011", Username: "kevin.guo", Email: "kevin.guo@example.com",
		DisplayName: "Kevin Guo", Department: "Support", Location: "Beijing",
		Role: domain.RoleUser, Status: domain.StatusInactive,
		CreatedAt: mk(150), UpdatedAt: mk(15), DeletedAt: &del,
	})
	return users
}
