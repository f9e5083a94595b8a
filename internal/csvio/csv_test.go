package csvio

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-user-console/internal/domain"
)

func TestExportUsersShape(t *testing.T) {
	created := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	login := time.Date(2026, 8, 30, 23, 5, 10, 0, time.UTC)
	users := []domain.User{
		{
			Username: "jane", DisplayName: "Doe, Jane", Email: "jane@example.com",
			Department: "R&D", Role: domain.RoleAdmin, Status: domain.StatusActive,
			CreatedAt: created, LastLoginAt: &login,
		},
		{
			Username: "bob", DisplayName: "Bob B", Email: "bob@example.com",
			Role: domain.RoleGuest, Status: domain.StatusSuspended, CreatedAt: created,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportUsers(&buf, users))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, utf8BOM))

	rows, err := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ExportHeader, rows[0])

	// 含逗号的字段被引号包住后，csv 读回仍是单个字段
	assert.Equal(t, "Doe, Jane", rows[1][1])
	assert.Equal(t, "2026-03-15 09:30:00", rows[1][6])
	assert.Equal(t, "2026-08-30 23:05:10", rows[1][7])

	// 从未登录 → 空串
	assert.Equal(t, "", rows[2][7])
	assert.Equal(t, "suspended", rows[2][5])
}

func TestParseUsersHappyPath(t *testing.T) {
	in := strings.Join([]string{
		"Username,Email,Full Name,Role,Department,Nickname",
		"amy,amy@example.com,Amy Anders,admin,Platform,ames",
		"bob,bob@example.com,Bob,manager,,",
	}, "\n")

	rows, errs, err := ParseUsers(strings.NewReader(in))
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Row)
	assert.Equal(t, "amy", rows[0].User.Username)
	assert.Equal(t, "Amy Anders", rows[0].User.DisplayName)
	assert.Equal(t, domain.RoleAdmin, rows[0].User.Role)
	assert.Equal(t, "Platform", rows[0].User.Department)

	// 未知列（Nickname）被忽略；role 认不出回落默认值由别处测
	assert.Equal(t, domain.RoleManager, rows[1].User.Role)
}

func TestParseUsersHeaderAliases(t *testing.T) {
	// 列名大小写 / 下划线 / 空格都不敏感
	in := "USERNAME,email,full_name,ROLE\njane,jane@example.com,Jane Doe,user\n"
	rows, errs, err := ParseUsers(strings.NewReader(in))
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane Doe", rows[0].User.DisplayName)
}

func TestParseUsersStripsLeadingBOM(t *testing.T) {
	in := "\xEF\xBB\xBFusername,email,fullName,role\njane,jane@example.com,Jane Doe,user\n"
	rows, _, err := ParseUsers(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "jane", rows[0].User.Username)
}

func TestParseUsersMissingRequiredColumn(t *testing.T) {
	in := "username,email,role\njane,jane@example.com,user\n"
	_, _, err := ParseUsers(strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Equal(t, "file", domain.FieldOf(err))
	assert.Contains(t, err.Error(), "fullname")
}

func TestParseUsersEmptyFile(t *testing.T) {
	_, _, err := ParseUsers(strings.NewReader(""))
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestParseUsersBadRowsDoNotAbort(t *testing.T) {
	in := strings.Join([]string{
		"username,email,fullName,role",
		"amy,amy@example.com,Amy A,admin",
		"broken,not-an-email,Broken B,user",
		",missing@example.com,No Name,user",
		"cam,cam@example.com,Cam C,guest",
	}, "\n")

	rows, errs, err := ParseUsers(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "amy", rows[0].User.Username)
	assert.Equal(t, "cam", rows[1].User.Username)
	assert.Equal(t, 4, rows[1].Row)

	// 行号按数据行 1 起算，表头不计
	require.Len(t, errs, 2)
	assert.Equal(t, 2, errs[0].Row)
	assert.Equal(t, 3, errs[1].Row)
}

func TestParseUsersUnknownRoleFallsBack(t *testing.T) {
	in := "username,email,fullName,role\njane,jane@example.com,Jane Doe,superadmin\n"
	rows, errs, err := ParseUsers(strings.NewReader(in))
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.RoleUser, rows[0].User.Role)
}
