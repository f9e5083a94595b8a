// Package gateway 是列表控制器唯一的数据入口。
// 启动时根据配置选定一种 Backend（mock / http），之后不再判断模式；
// 任何失败都以分类后的错误返回，绝不向调用方抛 panic。
package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-user-console/internal/domain"
	"go-user-console/internal/query"
	"go-user-console/internal/store"
)

const (
	ModeMock = "mock"
	ModeHTTP = "http"
)

type Opts struct {
	Mode        string // "mock" / "http"；未设置回落 mock（本地开发缺省）
	Log         *zap.Logger
	MockLatency time.Duration
	MockSeed    []domain.User
	HTTP        HTTPOpts
}

type Gateway struct {
	mode    string
	backend Backend
	log     *zap.Logger
}

func New(o Opts) *Gateway {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	mode := strings.ToLower(strings.TrimSpace(o.Mode))
	var b Backend
	switch mode {
	case ModeHTTP:
		b = NewHTTPBackend(o.HTTP)
	default:
		mode = ModeMock
		b = store.NewMock(store.Opts{Latency: o.MockLatency, Seed: o.MockSeed})
	}
	o.Log.Info("gateway backend selected", zap.String("mode", mode))
	return &Gateway{mode: mode, backend: b, log: o.Log}
}

// NewWithBackend 直接注入实现，测试用
func NewWithBackend(mode string, b Backend, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{mode: mode, backend: b, log: log}
}

func (g *Gateway) Mode() string { return g.mode }

func (g *Gateway) List(ctx context.Context, d query.Descriptor) (p *query.Page, err error) {
	defer g.finish("list", &err)
	return g.backend.List(ctx, d)
}

func (g *Gateway) Get(ctx context.Context, id string) (u *domain.User, err error) {
	defer g.finish("get", &err)
	return g.backend.Get(ctx, id)
}

func (g *Gateway) Create(ctx context.Context, in domain.NewUser) (u *domain.User, err error) {
	defer g.finish("create", &err)
	return g.backend.Create(ctx, in)
}

func (g *Gateway) Update(ctx context.Context, id string, p domain.UserPatch) (u *domain.User, err error) {
	defer g.finish("update", &err)
	return g.backend.Update(ctx, id, p)
}

func (g *Gateway) SoftDelete(ctx context.Context, id string) (u *domain.User, err error) {
	defer g.finish("soft_delete", &err)
	return g.backend.SoftDelete(ctx, id)
}

func (g *Gateway) Restore(ctx context.Context, id string) (u *domain.User, err error) {
	defer g.finish("restore", &err)
	return g.backend.Restore(ctx, id)
}

// finish 统一收口：panic 转 internal 错误、未分类错误兜底、计数、打日志
func (g *Gateway) finish(op string, errp *error) {
	if rec := recover(); rec != nil {
		*errp = domain.Internal("backend panic", nil)
		g.log.Error("gateway panic recovered", zap.String("op", op), zap.Any("panic", rec))
	}
	err := *errp
	if err != nil {
		kind := domain.KindOf(err)
		var de *domain.Error
		if !errors.As(err, &de) {
			*errp = domain.Internal(err.Error(), err)
		}
		g.log.Warn("gateway op failed",
			zap.String("op", op),
			zap.String("backend", g.mode),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
	countOp(g.mode, op, err)
}
