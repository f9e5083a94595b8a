package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID 生成 32 位无连字符的唯一 ID（用户记录 / 各类主键通用）
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
