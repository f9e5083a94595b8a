package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-user-console/internal/domain"
	"go-user-console/internal/query"
)

// fakeBackend 函数字段可逐测试覆盖，未覆盖的操作直接 panic 暴露误用
type fakeBackend struct {
	list   func(ctx context.Context, d query.Descriptor) (*query.Page, error)
	get    func(ctx context.Context, id string) (*domain.User, error)
	create func(ctx context.Context, in domain.NewUser) (*domain.User, error)
	del    func(ctx context.Context, id string) (*domain.User, error)
}

func (f *fakeBackend) List(ctx context.Context, d query.Descriptor) (*query.Page, error) {
	return f.list(ctx, d)
}
func (f *fakeBackend) Get(ctx context.Context, id string) (*domain.User, error) {
	return f.get(ctx, id)
}
func (f *fakeBackend) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	return f.create(ctx, in)
}
func (f *fakeBackend) Update(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	panic("not wired")
}
func (f *fakeBackend) SoftDelete(ctx context.Context, id string) (*domain.User, error) {
	return f.del(ctx, id)
}
func (f *fakeBackend) Restore(ctx context.Context, id string) (*domain.User, error) {
	panic("not wired")
}

func TestNewDefaultsToMock(t *testing.T) {
	g := New(Opts{})
	assert.Equal(t, ModeMock, g.Mode())

	// 内置种子数据可直接列出
	page, err := g.List(context.Background(), query.Descriptor{Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.NotEmpty(t, page.Items)
}

func TestNewUnknownModeFallsBackToMock(t *testing.T) {
	g := New(Opts{Mode: " HTTPS "})
	assert.Equal(t, ModeMock, g.Mode())
}

func TestPanicBecomesInternalError(t *testing.T) {
	fb := &fakeBackend{
		get: func(ctx context.Context, id string) (*domain.User, error) { panic("boom") },
	}
	g := NewWithBackend(ModeMock, fb, nil)

	u, err := g.Get(context.Background(), "u-1")
	assert.Nil(t, u)
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestForeignErrorWrappedAsInternal(t *testing.T) {
	sentinel := errors.New("driver exploded")
	fb := &fakeBackend{
		list: func(ctx context.Context, d query.Descriptor) (*query.Page, error) {
			return nil, sentinel
		},
	}
	g := NewWithBackend(ModeMock, fb, nil)

	_, err := g.List(context.Background(), query.Descriptor{Page: 1, PageSize: 10})
	require.Error(t, err)
	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.KindInternal, de.Kind)
	assert.True(t, errors.Is(err, sentinel))
}

func TestClassifiedErrorsPassThrough(t *testing.T) {
	fb := &fakeBackend{
		del: func(ctx context.Context, id string) (*domain.User, error) {
			return nil, domain.NotFound("user not found")
		},
	}
	g := NewWithBackend(ModeMock, fb, nil)

	_, err := g.SoftDelete(context.Background(), "ghost")
	assert.True(t, domain.IsNotFound(err))
}

func TestCreateDelegates(t *testing.T) {
	fb := &fakeBackend{
		create: func(ctx context.Context, in domain.NewUser) (*domain.User, error) {
			u := domain.User{ID: "gen-1", Username: in.Username, Status: domain.StatusActive}
			return &u, nil
		},
	}
	g := NewWithBackend(ModeHTTP, fb, nil)

	u, err := g.Create(context.Background(), domain.NewUser{Username: "jane"})
	require.NoError(t, err)
	assert.Equal(t, "gen-1", u.ID)
}
