package domain

import (
	"errors"
	"fmt"
)

// Kind 错误分类；网关保证抛出的每个错误都落在这些类别里
type Kind string

const (
	KindValidation      Kind = "validation_error" // 字段级，内联提示
	KindConflict        Kind = "conflict"         // 唯一性冲突，落到 username/email 字段
	KindNotFound        Kind = "not_found"        // 目标 id 不存在，说明客户端状态已过期
	KindNetwork         Kind = "network_error"
	KindTimeout         Kind = "timeout"
	KindInvalidArgument Kind = "invalid_argument" // 契约违规（编程错误），不面向用户
	KindInternal        Kind = "internal"
)

type Error struct {
	Kind  Kind
	Field string // Validation / Conflict 时定位到字段
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Msg)
	}
	if e.Err != nil && e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(field, msg string) error { return &Error{Kind: KindValidation, Field: field, Msg: msg} }
func Conflict(field, msg string) error   { return &Error{Kind: KindConflict, Field: field, Msg: msg} }
func NotFound(msg string) error          { return &Error{Kind: KindNotFound, Msg: msg} }
func Network(err error) error            { return &Error{Kind: KindNetwork, Msg: "backend unreachable", Err: err} }
func Timeout(err error) error            { return &Error{Kind: KindTimeout, Msg: "backend timed out", Err: err} }
func InvalidArgument(msg string) error   { return &Error{Kind: KindInvalidArgument, Msg: msg} }
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf 取分类；非本包错误一律视为 internal
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func IsKind(err error, k Kind) bool { return KindOf(err) == k }

func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }
func IsConflict(err error) bool { return IsKind(err, KindConflict) }

// FieldOf 取字段名（无字段错误返回空串）
func FieldOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Field
	}
	return ""
}
