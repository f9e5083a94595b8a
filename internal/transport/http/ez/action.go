// Package ez 一行注册接口：绑定 → 鉴权 → 执行 → 统一包裹。
// 处理函数拿到的是网关而不是数据库句柄，错误按领域分类落进包裹。
package ez

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-user-console/internal/domain"
	"go-user-console/internal/gateway"
	resp "go-user-console/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 请求体绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.PostForm 取
)

// Action I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PUT" | "DELETE"
	Path    string   // 例："/users"、"/users/:id/restore"
	Binder  Binder
	Auth    bool     // 是否要求已登录（分组中间件已写入 userId）
	Roles   []string // 限定角色（可选）
	Handler func(c *gin.Context, gw *gateway.Gateway, in *I) (O, error)
}

// RegisterAction 注册动作接口；所有响应都是 HTTP 200 + 统一包裹
func RegisterAction[I any, O any](e EZ, gw *gateway.Gateway, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth {
			uid := c.GetString("userId")
			if uid == "" {
				c.JSON(http.StatusOK, resp.FailMsg(resp.ReasonUnauthorized, "unauthorized"))
				return
			}
			if len(a.Roles) > 0 {
				role := c.GetString("role")
				ok := false
				for _, r := range a.Roles {
					if role == r {
						ok = true
						break
					}
				}
				if !ok {
					c.JSON(http.StatusOK, resp.FailMsg(resp.ReasonForbidden, "forbidden"))
					return
				}
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone
		}
		if bindErr != nil {
			c.JSON(http.StatusOK, resp.FailMsg(string(domain.KindValidation), bindErr.Error()))
			return
		}

		out, err := a.Handler(c, gw, &in)
		if err != nil {
			c.JSON(http.StatusOK, resp.Fail(err))
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// POSTFILES 处理 multipart/form-data 文件上传（CSV 导入用）
func POSTFILES(e EZ, path, fieldName string, h func(c *gin.Context, files []*multipart.FileHeader) (any, error)) {
	e.g.POST(path, func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusOK, resp.FailMsg(string(domain.KindValidation), "invalid multipart form: "+err.Error()))
			return
		}
		files := form.File[fieldName]
		if len(files) == 0 {
			c.JSON(http.StatusOK, resp.FailMsg(string(domain.KindValidation), "no files uploaded"))
			return
		}
		data, err := h(c, files)
		if err != nil {
			c.JSON(http.StatusOK, resp.Fail(err))
			return
		}
		c.JSON(http.StatusOK, resp.OK(data))
	})
}
