package response

import (
	"go-user-console/internal/domain"
)

// Resp 所有接口的统一包裹：{success, data?, error?, field?, message?}。
// 调用方只看 success，不依赖 HTTP 状态码。
type Resp struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"` // 错误分类标识（validation_error / conflict / ...）
	Field   string `json:"field,omitempty"` // 字段级错误定位（内联展示用）
	Message string `json:"message,omitempty"`
}

func OK(data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Success: true, Data: data}
}

// Fail 按错误分类生成失败包裹；非 domain 错误按 internal 处理
func Fail(err error) Resp {
	return Resp{
		Success: false,
		Error:   string(domain.KindOf(err)),
		Field:   domain.FieldOf(err),
		Message: err.Error(),
	}
}

// FailMsg 无底层错误对象时的快捷失败包裹；kind 取 domain.Kind 或
// 传输层自有的 unauthorized / forbidden
func FailMsg(kind, msg string) Resp {
	return Resp{Success: false, Error: kind, Message: msg}
}

// 传输层独有的失败分类（领域错误体系之外）
const (
	ReasonUnauthorized = "unauthorized"
	ReasonForbidden    = "forbidden"
	ReasonRateLimited  = "rate_limited"
)
