package gateway

import (
	"context"

	"go-user-console/internal/domain"
	"go-user-console/internal/query"
)

// Backend 数据来源策略。启动时二选一：Mock（内存）或 HTTP（真实后端），
// 之后所有调用都走同一个实现，不再逐处判断模式开关。
// 写操作一律返回完整记录，调用方无需跟一次读。
type Backend interface {
	List(ctx context.Context, d query.Descriptor) (*query.Page, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, in domain.NewUser) (*domain.User, error)
	Update(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error)
	SoftDelete(ctx context.Context, id string) (*domain.User, error)
	Restore(ctx context.Context, id string) (*domain.User, error)
}
