// Package controller 持有列表视图的筛选/排序/分页状态，并代表展示层
// 向网关发起请求。刷新带单调递增的序号：慢响应晚到时只应用最新一次
// 发出的查询，网络失败保留上一次的完好页面。
package controller

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"

	"go-user-console/internal/csvio"
	"go-user-console/internal/domain"
	"go-user-console/internal/gateway"
	"go-user-console/internal/query"
)

const exportPageSize = 500

type List struct {
	gw  *gateway.Gateway
	log *zap.Logger

	mu      sync.Mutex
	desc    query.Descriptor
	issued  uint64 // 最近一次发出的查询序号
	current *query.Page
	lastErr error
}

func NewList(gw *gateway.Gateway, log *zap.Logger) *List {
	if log == nil {
		log = zap.NewNop()
	}
	return &List{
		gw:   gw,
		log:  log,
		desc: query.Descriptor{Page: 1, PageSize: 20, SortOrder: query.Asc},
	}
}

// Descriptor 当前查询参数的快照
func (l *List) Descriptor() query.Descriptor {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.desc
}

// Current 上一次成功应用的页面（可能落后于最新参数）
func (l *List) Current() *query.Page {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

func (l *List) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// SetSearch / SetRole / SetStatus 改筛选条件时回到第一页
func (l *List) SetSearch(s string) { l.mutate(func(d *query.Descriptor) { d.Search = s; d.Page = 1 }) }
func (l *List) SetRole(r string)   { l.mutate(func(d *query.Descriptor) { d.Role = r; d.Page = 1 }) }
func (l *List) SetStatus(s string) { l.mutate(func(d *query.Descriptor) { d.Status = s; d.Page = 1 }) }

func (l *List) SetSort(field string, dir query.Direction) {
	l.mutate(func(d *query.Descriptor) { d.SortBy = field; d.SortOrder = dir })
}

func (l *List) SetPage(p int) { l.mutate(func(d *query.Descriptor) { d.Page = p }) }

func (l *List) SetPageSize(n int) {
	l.mutate(func(d *query.Descriptor) { d.PageSize = n; d.Page = 1 })
}

// Apply 整体替换查询参数（HTTP 门面按请求重建描述符时用）
func (l *List) Apply(d query.Descriptor) { l.mutate(func(cur *query.Descriptor) { *cur = d }) }

func (l *List) mutate(fn func(*query.Descriptor)) {
	l.mu.Lock()
	fn(&l.desc)
	l.mu.Unlock()
}

// Refresh 按当前参数发起一次列表查询。
// 返回本次查询的结果；过期响应（期间又发出了更新的查询）不写入状态。
func (l *List) Refresh(ctx context.Context) (*query.Page, error) {
	l.mu.Lock()
	l.issued++
	seq := l.issued
	d := l.desc
	l.mu.Unlock()

	page, err := l.gw.List(ctx, d)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.issued {
		// 晚到的旧响应：丢弃，不覆盖更新的状态
		l.log.Debug("stale list response discarded",
			zap.Uint64("seq", seq), zap.Uint64("latest", l.issued))
		return page, err
	}
	if err != nil {
		// 网络/超时失败保留上一次完好页面，只记错误
		l.lastErr = err
		return nil, err
	}
	l.current = page
	l.lastErr = nil
	return page, nil
}

// BulkResult 批量删除汇总；非事务，部分失败不回滚
type BulkResult struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Errors    map[string]string `json:"errors,omitempty"` // id → 原因
}

func (l *List) BulkDelete(ctx context.Context, ids []string) *BulkResult {
	res := &BulkResult{Errors: map[string]string{}}
	for _, id := range ids {
		if _, err := l.gw.SoftDelete(ctx, id); err != nil {
			res.Failed++
			res.Errors[id] = err.Error()
			continue
		}
		res.Succeeded++
	}
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res
}

// ExportCSV 按当前筛选/排序导出全部命中记录（翻页拉全量）
func (l *List) ExportCSV(ctx context.Context, w io.Writer) error {
	d := l.Descriptor()
	d.Page = 1
	d.PageSize = exportPageSize

	var all []domain.User
	for {
		page, err := l.gw.List(ctx, d)
		if err != nil {
			return err
		}
		all = append(all, page.Items...)
		if d.Page >= page.TotalPages || len(page.Items) == 0 {
			break
		}
		d.Page++
	}
	return csvio.ExportUsers(w, all)
}

// ImportCSV 逐行创建；解析错误与创建失败（冲突/校验）都按行汇总
func (l *List) ImportCSV(ctx context.Context, r io.Reader) (*csvio.ImportResult, error) {
	rows, rowErrs, err := csvio.ParseUsers(r)
	if err != nil {
		return nil, err
	}
	res := &csvio.ImportResult{Errors: rowErrs}
	for _, row := range rows {
		if _, cerr := l.gw.Create(ctx, row.User); cerr != nil {
			res.Errors = append(res.Errors, csvio.RowError{Row: row.Row, Error: cerr.Error()})
			continue
		}
		res.SuccessCount++
	}
	res.FailedCount = len(res.Errors)
	return res, nil
}
