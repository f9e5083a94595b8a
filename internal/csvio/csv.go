// Package csvio 用户表的 CSV 导入导出。
// 导出带 UTF-8 BOM（Excel 兼容）；导入逐行报错不中断，行号按数据行 1 起算。
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"go-user-console/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportHeader 导出列固定顺序
var ExportHeader = []string{"Username", "Full Name", "Email", "Department", "Role", "Status", "Created At", "Last Login"}

const timeLayout = "2006-01-02 15:04:05"

// ExportUsers 一条可见（已过滤）记录一行；含逗号的字段由 csv 包自动加双引号
func ExportUsers(w io.Writer, users []domain.User) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, u := range users {
		last := ""
		if u.LastLoginAt != nil {
			last = u.LastLoginAt.UTC().Format(timeLayout)
		}
		row := []string{
			u.Username,
			u.DisplayName,
			u.Email,
			u.Department,
			string(u.Role),
			string(u.Status),
			u.CreatedAt.UTC().Format(timeLayout),
			last,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RowError 单行导入失败；Row 是 1 起算的数据行号（表头不计）
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ParsedRow struct {
	Row  int
	User domain.NewUser
}

// ImportResult 导入汇总；部分失败不回滚已成功的行
type ImportResult struct {
	SuccessCount int        `json:"successCount"`
	FailedCount  int        `json:"failedCount"`
	Errors       []RowError `json:"errors"`
}

var requiredColumns = []string{"username", "email", "fullname", "role"}

// ParseUsers 解析数据行：表头缺必需列整体报错；坏行跳过并记入 errs。
// 未知列忽略；role 认不出回落默认值（与上游映射规则一致）。
func ParseUsers(r io.Reader) (rows []ParsedRow, errs []RowError, err error) {
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, domain.Validation("file", "empty or unreadable csv file")
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[normalizeColumn(h)] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, nil, domain.Validation("file", fmt.Sprintf("missing required column %q", c))
		}
	}

	rowNum := 0
	for {
		rec, rerr := cr.Read()
		if rerr == io.EOF {
			break
		}
		rowNum++
		if rerr != nil {
			errs = append(errs, RowError{Row: rowNum, Error: "malformed csv row"})
			continue
		}
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		in := domain.NewUser{
			Username:    get("username"),
			Email:       get("email"),
			DisplayName: get("fullname"),
			Phone:       get("phone"),
			Department:  get("department"),
			Location:    get("location"),
			Role:        domain.ParseRole(get("role")),
		}
		if verr := in.Validate(); verr != nil {
			errs = append(errs, RowError{Row: rowNum, Error: verr.Error()})
			continue
		}
		rows = append(rows, ParsedRow{Row: rowNum, User: in})
	}
	return rows, errs, nil
}

// normalizeColumn 列名容错：大小写 / 空格 / 下划线都不敏感（"Full Name" ≡ "fullName"）
func normalizeColumn(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "_", "")
	return h
}

func stripBOM(r io.Reader) io.Reader {
	br := &bomReader{r: r}
	return br
}

type bomReader struct {
	r       io.Reader
	checked bool
	buf     []byte
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head := make([]byte, 3)
		n, err := io.ReadFull(b.r, head)
		if err == io.EOF {
			return 0, io.EOF
		}
		if err != nil && err != io.ErrUnexpectedEOF {
			return 0, err
		}
		head = head[:n]
		if !(n == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF) {
			b.buf = head
		}
	}
	if len(b.buf) > 0 {
		n := copy(p, b.buf)
		b.buf = b.buf[n:]
		return n, nil
	}
	return b.r.Read(p)
}
