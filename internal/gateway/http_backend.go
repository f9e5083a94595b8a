package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"go-user-console/internal/adapter"
	"go-user-console/internal/core/cache"
	"go-user-console/internal/domain"
	"go-user-console/internal/query"
)

// apiEnvelope 真实后端的统一响应包裹
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type apiListData struct {
	Items      []adapter.APIUser `json:"items"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Total      int               `json:"total"`
	TotalPages int               `json:"totalPages"`
}

type HTTPOpts struct {
	BaseURL    string
	TenantID   string        // 附在每个请求的 X-Tenant-ID 头上
	Timeout    time.Duration // 缺省 30s
	MaxRetries uint64        // 只读操作网络失败的重试次数
	Client     *http.Client  // 可注入，测试用
	Cache      *cache.Cache  // 可选：按 id 读缓存
	CacheTTL   time.Duration
}

// HTTPBackend 真实后端客户端：限时、重试、熔断，错误全部归入分类体系
type HTTPBackend struct {
	base     string
	tenant   string
	timeout  time.Duration
	retries  uint64
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	cache    *cache.Cache
	cacheTTL time.Duration
}

func NewHTTPBackend(o HTTPOpts) *HTTPBackend {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Client == nil {
		o.Client = &http.Client{}
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 30 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "user-backend",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
	return &HTTPBackend{
		base:     strings.TrimRight(o.BaseURL, "/"),
		tenant:   o.TenantID,
		timeout:  o.Timeout,
		retries:  o.MaxRetries,
		client:   o.Client,
		breaker:  cb,
		cache:    o.Cache,
		cacheTTL: o.CacheTTL,
	}
}

func (b *HTTPBackend) List(ctx context.Context, d query.Descriptor) (*query.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(d.Page))
	q.Set("limit", strconv.Itoa(d.PageSize))
	if d.Search != "" {
		q.Set("search", d.Search)
	}
	if d.Role != "" {
		q.Set("role", d.Role)
	}
	if d.Status != "" {
		q.Set("status", d.Status)
	}
	if d.SortBy != "" {
		q.Set("sortBy", d.SortBy)
		q.Set("sortOrder", string(d.SortOrder))
	}

	var data apiListData
	if err := b.doRetry(ctx, http.MethodGet, "/users", q, nil, &data); err != nil {
		return nil, err
	}
	items := make([]domain.User, 0, len(data.Items))
	for _, a := range data.Items {
		items = append(items, adapter.FromAPI(a))
	}
	return &query.Page{
		Items:      items,
		Page:       data.Page,
		PageSize:   data.Limit,
		Total:      data.Total,
		TotalPages: data.TotalPages,
	}, nil
}

func (b *HTTPBackend) Get(ctx context.Context, id string) (*domain.User, error) {
	load := func(ctx context.Context) (*adapter.APIUser, error) {
		var a adapter.APIUser
		if err := b.doRetry(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &a); err != nil {
			return nil, err
		}
		return &a, nil
	}

	var a *adapter.APIUser
	var err error
	if b.cache != nil {
		a, err = cache.GetOrLoadJSON(b.cache, ctx, userKey(id), b.cacheTTL, load)
	} else {
		a, err = load(ctx)
	}
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.NotFound("user not found")
	}
	u := adapter.FromAPI(*a)
	return &u, nil
}

func (b *HTTPBackend) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var a adapter.APIUser
	if err := b.do(ctx, http.MethodPost, "/users", nil, adapter.ToCreateRequest(in), &a); err != nil {
		return nil, err
	}
	u := adapter.FromAPI(a)
	return &u, nil
}

func (b *HTTPBackend) Update(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	var a adapter.APIUser
	if err := b.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), nil, adapter.ToUpdateRequest(p), &a); err != nil {
		return nil, err
	}
	b.invalidate(ctx, id)
	u := adapter.FromAPI(a)
	return &u, nil
}

func (b *HTTPBackend) SoftDelete(ctx context.Context, id string) (*domain.User, error) {
	var a adapter.APIUser
	if err := b.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, &a); err != nil {
		return nil, err
	}
	b.invalidate(ctx, id)
	u := adapter.FromAPI(a)
	return &u, nil
}

func (b *HTTPBackend) Restore(ctx context.Context, id string) (*domain.User, error) {
	var a adapter.APIUser
	if err := b.do(ctx, http.MethodPost, "/users/"+url.PathEscape(id)+"/restore", nil, nil, &a); err != nil {
		return nil, err
	}
	b.invalidate(ctx, id)
	u := adapter.FromAPI(a)
	return &u, nil
}

func userKey(id string) string { return "user:" + id }

func (b *HTTPBackend) invalidate(ctx context.Context, id string) {
	if b.cache != nil {
		b.cache.Invalidate(ctx, userKey(id))
	}
}

// doRetry 只读请求的包装：网络类失败按指数退避重试，其余错误立刻返回
func (b *HTTPBackend) doRetry(ctx context.Context, method, path string, q url.Values, body, out any) error {
	if b.retries == 0 {
		return b.do(ctx, method, path, q, body, out)
	}
	op := func() error {
		err := b.do(ctx, method, path, q, body, out)
		if err != nil && !domain.IsKind(err, domain.KindNetwork) {
			return backoff.Permanent(err)
		}
		return err
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), b.retries), ctx)
	return backoff.Retry(op, bo)
}

// do 一次 HTTP 往返：限时 + 租户头 + 熔断 + 包裹解码 + 错误分类
func (b *HTTPBackend) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	u := b.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return domain.Internal("encode request", err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return domain.Internal("build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.tenant != "" {
		req.Header.Set("X-Tenant-ID", b.tenant)
	}

	res, err := b.breaker.Execute(func() (any, error) {
		resp, e := b.client.Do(req)
		if e != nil {
			return nil, e
		}
		// 5xx 也计入熔断失败
		if resp.StatusCode >= 500 {
			return resp, fmt.Errorf("upstream %d", resp.StatusCode)
		}
		return resp, nil
	})

	var resp *http.Response
	if r, ok := res.(*http.Response); ok {
		resp = r
	}
	if err != nil {
		if resp == nil {
			return classifyTransport(ctx, err)
		}
		// 带响应体的 5xx：读完丢弃再归类
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.Network(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return classifyTransport(ctx, err)
	}

	var env apiEnvelope
	if len(raw) > 0 {
		if e := json.Unmarshal(raw, &env); e != nil {
			return domain.Network(fmt.Errorf("malformed response: %w", e))
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		return classifyStatus(resp.StatusCode, env)
	}
	if out != nil && len(env.Data) > 0 {
		if e := json.Unmarshal(env.Data, out); e != nil {
			return domain.Network(fmt.Errorf("malformed response data: %w", e))
		}
	}
	return nil
}

func classifyTransport(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.Timeout(err)
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		return domain.Network(err)
	default:
		return domain.Network(err)
	}
}

func classifyStatus(status int, env apiEnvelope) error {
	msg := env.Message
	if msg == "" {
		msg = env.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.Validation("", msg)
	case http.StatusNotFound:
		return domain.NotFound(msg)
	case http.StatusConflict:
		// 后端在 message 里带字段名的话尽量透传
		field := ""
		low := strings.ToLower(msg)
		if strings.Contains(low, "email") {
			field = "email"
		} else if strings.Contains(low, "username") {
			field = "username"
		}
		return domain.Conflict(field, msg)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return domain.Timeout(errors.New(msg))
	default:
		return domain.Network(fmt.Errorf("backend status %d: %s", status, msg))
	}
}
