package controller

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-user-console/internal/domain"
	"go-user-console/internal/gateway"
	"go-user-console/internal/query"
)

type fakeBackend struct {
	list   func(ctx context.Context, d query.Descriptor) (*query.Page, error)
	create func(ctx context.Context, in domain.NewUser) (*domain.User, error)
	del    func(ctx context.Context, id string) (*domain.User, error)
}

func (f *fakeBackend) List(ctx context.Context, d query.Descriptor) (*query.Page, error) {
	return f.list(ctx, d)
}
func (f *fakeBackend) Get(ctx context.Context, id string) (*domain.User, error) {
	panic("not wired")
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

func newCtrl(fb *fakeBackend) *List {
	return NewList(gateway.NewWithBackend(gateway.ModeMock, fb, nil), nil)
}

func pageOf(usernames ...string) *query.Page {
	items := make([]domain.User, 0, len(usernames))
	for _, n := range usernames {
		items = append(items, domain.User{ID: n, Username: n, Status: domain.StatusActive})
	}
	return &query.Page{Items: items, Page: 1, PageSize: 20, Total: len(items), TotalPages: 1}
}

func TestDefaultsAndFilterResetsPage(t *testing.T) {
	l := newCtrl(&fakeBackend{})
	d := l.Descriptor()
	assert.Equal(t, 1, d.Page)
	assert.Equal(t, 20, d.PageSize)
	assert.Equal(t, query.Asc, d.SortOrder)

	l.SetPage(5)
	l.SetSearch("jane")
	assert.Equal(t, 1, l.Descriptor().Page)

	l.SetPage(3)
	l.SetRole("admin")
	assert.Equal(t, 1, l.Descriptor().Page)

	l.SetPage(2)
	l.SetSort("email", query.Desc)
	// 只改排序不回第一页
	assert.Equal(t, 2, l.Descriptor().Page)
	assert.Equal(t, "email", l.Descriptor().SortBy)
}

func TestRefreshAppliesResult(t *testing.T) {
	fb := &fakeBackend{
		list: func(ctx context.Context, d query.Descriptor) (*query.Page, error) {
			return pageOf("amy", "bob"), nil
		},
	}
	l := newCtrl(fb)
	page, err := l.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, page, l.Current())
	assert.NoError(t, l.LastError())
}

func TestRefreshKeepsLastGoodPageOnError(t *testing.T) {
	var fail atomic.Bool
	fb := &fakeBackend{
		list: func(ctx context.Context, d query.Descriptor) (*query.Page, error) {
			if fail.Load() {
				return nil, domain.Network(context.DeadlineExceeded)
			}
			return pageOf("amy"), nil
		},
	}
	l := newCtrl(fb)

	good, err := l.Refresh(context.Background())
	require.NoError(t, err)

	fail.Store(true)
	_, err = l.Refresh(context.Background())
	require.Error(t, err)

	// 失败不清空上一次的完好页面
	assert.Equal(t, good, l.Current())
	assert.True(t, domain.IsKind(l.LastError(), domain.KindNetwork))
}

func TestRefreshDiscardsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	fb := &fakeBackend{
		list: func(ctx context.Context, d query.Descriptor) (*query.Page, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				<-release // 第一次查询被挂起，模拟慢响应
				return pageOf("stale"), nil
			}
			return pageOf("fresh"), nil
		},
	}
	l := newCtrl(fb)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = l.Refresh(context.Background())
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 },
		time.Second, time.Millisecond)

	// 第二次查询先完成并落地
	fresh, err := l.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", fresh.Items[0].Username)

	// 放行慢响应；它已过期，不得覆盖状态
	close(release)
	<-done
	assert.Equal(t, "fresh", l.Current().Items[0].Username)
}

func TestBulkDeleteCountsPartialFailure(t *testing.T) {
	fb := &fakeBackend{
		del: func(ctx context.Context, id string) (*domain.User, error) {
			if id == "ghost" {
				return nil, domain.NotFound("user not found")
			}
			u := domain.User{ID: id}
			return &u, nil
		},
	}
	l := newCtrl(fb)

	res := l.BulkDelete(context.Background(), []string{"u-1", "ghost", "u-2"})
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, res.Errors["ghost"], "not_found")

	res = l.BulkDelete(context.Background(), []string{"u-1"})
	assert.Nil(t, res.Errors)
}

func TestExportCSVPagesThroughAllResults(t *testing.T) {
	var seen []int
	fb := &fakeBackend{
		list: func(ctx context.Context, d query.Descriptor) (*query.Page, error) {
			seen = append(seen, d.Page)
			if d.Page == 1 {
				p := pageOf("amy", "bob")
				p.TotalPages = 2
				return p, nil
			}
			p := pageOf("cam")
			p.Page = 2
			p.TotalPages = 2
			return p, nil
		},
	}
	l := newCtrl(fb)

	var buf bytes.Buffer
	require.NoError(t, l.ExportCSV(context.Background(), &buf))

	assert.Equal(t, []int{1, 2}, seen)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"))
	for _, name := range []string{"amy", "bob", "cam"} {
		assert.Contains(t, out, name)
	}
}

func TestImportCSVCollectsRowErrors(t *testing.T) {
	fb := &fakeBackend{
		create: func(ctx context.Context, in domain.NewUser) (*domain.User, error) {
			if in.Username == "taken" {
				return nil, domain.Conflict("username", "username already exists")
			}
			u := domain.User{ID: "gen-" + in.Username, Username: in.Username}
			return &u, nil
		},
	}
	l := newCtrl(fb)

	csv := strings.Join([]string{
		"Username,Email,Full Name,Role",
		"amy,amy@example.com,Amy A,admin",
		"broken,not-an-email,Broken B,user",
		"taken,taken@example.com,Taken C,user",
	}, "\n")

	res, err := l.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 2, res.FailedCount)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 2, res.Errors[0].Row) // 坏邮箱行
	assert.Equal(t, 3, res.Errors[1].Row) // 用户名冲突行
}
