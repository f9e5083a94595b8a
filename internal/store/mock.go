// Package store 提供内存版用户表，离线开发 / 演示时顶替真实后端。
// 所有操作走异步契约（context + 人工延迟）模拟网络往返；对外只交副本，
// 想改数据必须走 Update。
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-user-console/internal/domain"
	"go-user-console/internal/query"
	"go-user-console/pkg/utils"
)

type Opts struct {
	Latency time.Duration      // 每次调用的人工延迟，0 表示关闭
	Seed    []domain.User      // 为空用内置种子数据
	Now     func() time.Time   // 可注入，测试用
	NewID   func() string      // 同上
}

// Mock 单个共享可变集合；互斥锁保证并发调用下读写原子
type Mock struct {
	mu      sync.Mutex
	records []domain.User
	latency time.Duration
	now     func() time.Time
	newID   func() string
}

func NewMock(o Opts) *Mock {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = utils.NewID
	}
	seed := o.Seed
	if seed == nil {
		seed = SeedUsers(o.Now())
	}
	records := make([]domain.User, 0, len(seed))
	for _, u := range seed {
		records = append(records, u.Clone())
	}
	return &Mock{
		records: records,
		latency: o.Latency,
		now:     o.Now,
		newID:   o.NewID,
	}
}

// wait 模拟网络延迟；上下文取消优先生效
func (m *Mock) wait(ctx context.Context) error {
	if m.latency <= 0 {
		if err := ctx.Err(); err != nil {
			return domain.Timeout(err)
		}
		return nil
	}
	select {
	case <-time.After(m.latency):
		return nil
	case <-ctx.Done():
		return domain.Timeout(ctx.Err())
	}
}

func (m *Mock) List(ctx context.Context, d query.Descriptor) (*query.Page, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	snapshot := make([]domain.User, 0, len(m.records))
	for _, u := range m.records {
		snapshot = append(snapshot, u.Clone())
	}
	m.mu.Unlock()
	return query.Run(snapshot, d)
}

func (m *Mock) Get(ctx context.Context, id string) (*domain.User, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return nil, domain.NotFound("user not found")
	}
	u := m.records[i].Clone()
	return &u, nil
}

func (m *Mock) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkUnique(in.Username, in.Email, ""); err != nil {
		return nil, err
	}
	now := m.now()
	u := domain.User{
		ID:          m.newID(),
		Username:    strings.TrimSpace(in.Username),
		Email:       strings.TrimSpace(in.Email),
		DisplayName: strings.TrimSpace(in.DisplayName),
		Phone:       in.Phone,
		Department:  in.Department,
		Location:    in.Location,
		Role:        in.Role,
		Status:      domain.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.records = append(m.records, u)
	out := u.Clone()
	return &out, nil
}

func (m *Mock) Update(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return nil, domain.NotFound("user not found")
	}

	// 先在副本上套补丁，校验通过才落回去
	merged := m.records[i].Clone()
	if err := p.Apply(&merged); err != nil {
		return nil, err
	}
	if err := m.checkUnique(merged.Username, merged.Email, id); err != nil {
		return nil, err
	}
	merged.UpdatedAt = m.now()
	m.records[i] = merged
	out := merged.Clone()
	return &out, nil
}

// SoftDelete 置 deletedAt + status=inactive，其余字段（含 updatedAt）不动；
// 已删除的记录再删是幂等空操作
func (m *Mock) SoftDelete(ctx context.Context, id string) (*domain.User, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return nil, domain.NotFound("user not found")
	}
	if !m.records[i].Deleted() {
		now := m.now()
		m.records[i].DeletedAt = &now
		m.records[i].Status = domain.StatusInactive
	}
	out := m.records[i].Clone()
	return &out, nil
}

// Restore 清 deletedAt、status 回 active；未删除的记录恢复是幂等空操作
func (m *Mock) Restore(ctx context.Context, id string) (*domain.User, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return nil, domain.NotFound("user not found")
	}
	if m.records[i].Deleted() {
		m.records[i].DeletedAt = nil
		m.records[i].Status = domain.StatusActive
	}
	out := m.records[i].Clone()
	return &out, nil
}

// index 按 id 找下标（含软删记录），没有返回 -1；调用方需持锁
func (m *Mock) index(id string) int {
	for i := range m.records {
		if m.records[i].ID == id {
			return i
		}
	}
	return -1
}

// checkUnique 唯一性只看未删除记录；email 不区分大小写。exclude 排除自身（更新场景）。
func (m *Mock) checkUnique(username, email, exclude string) error {
	uname := strings.TrimSpace(username)
	lmail := strings.ToLower(strings.TrimSpace(email))
	for i := range m.records {
		r := &m.records[i]
		if r.ID == exclude || r.Deleted() {
			continue
		}
		if r.Username == uname {
			return domain.Conflict("username", "username already exists")
		}
		if strings.ToLower(r.Email) == lmail {
			return domain.Conflict("email", "email already exists")
		}
	}
	return nil
}
