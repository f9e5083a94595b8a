package router

import (
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-user-console/internal/adapter"
	"go-user-console/internal/controller"
	"go-user-console/internal/csvio"
	"go-user-console/internal/domain"
	"go-user-console/internal/gateway"
	"go-user-console/internal/query"
	httpez "go-user-console/internal/transport/http/ez"
	resp "go-user-console/internal/transport/http/response"
)

// MountUserActions 用户管理的全部管理端接口
func MountUserActions(admin *gin.RouterGroup, gw *gateway.Gateway, l *zap.Logger) {
	ez := httpez.New(admin)

	newCtrl := func(d query.Descriptor) *controller.List {
		ctrl := controller.NewList(gw, l)
		ctrl.Apply(d)
		return ctrl
	}

	// --- GET /admin/v1/users 列表（筛选/排序/分页都在描述符里） ---
	type listOut struct {
		Items      []adapter.DisplayUser `json:"items"`
		Page       int                   `json:"page"`
		Limit      int                   `json:"limit"`
		Total      int                   `json:"total"`
		TotalPages int                   `json:"totalPages"`
	}
	httpez.RegisterAction[query.Descriptor, listOut](ez, gw, httpez.Action[query.Descriptor, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, gw *gateway.Gateway, in *query.Descriptor) (listOut, error) {
			page, err := newCtrl(*in).Refresh(c)
			if err != nil {
				return listOut{}, err
			}
			now := time.Now()
			items := make([]adapter.DisplayUser, 0, len(page.Items))
			for _, u := range page.Items {
				items = append(items, adapter.ToDisplay(u, now))
			}
			return listOut{
				Items: items, Page: page.Page, Limit: page.PageSize,
				Total: page.Total, TotalPages: page.TotalPages,
			}, nil
		},
	})

	// --- GET /admin/v1/users/:id 详情 ---
	httpez.RegisterAction[struct{}, adapter.DisplayUser](ez, gw, httpez.Action[struct{}, adapter.DisplayUser]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, gw *gateway.Gateway, _ *struct{}) (adapter.DisplayUser, error) {
			u, err := gw.Get(c, c.Param("id"))
			if err != nil {
				return adapter.DisplayUser{}, err
			}
			return adapter.ToDisplay(*u, time.Now()), nil
		},
	})

	// --- POST /admin/v1/users 创建 ---
	type createIn struct {
		Username   string `json:"username"   binding:"required"`
		Email      string `json:"email"      binding:"required,email"`
		FullName   string `json:"fullName"   binding:"required"`
		Role       string `json:"role"       binding:"required"`
		Phone      string `json:"phone"`
		Department string `json:"department"`
		Location   string `json:"location"`
	}
	httpez.RegisterAction[createIn, adapter.DisplayUser](ez, gw, httpez.Action[createIn, adapter.DisplayUser]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, gw *gateway.Gateway, in *createIn) (adapter.DisplayUser, error) {
			u, err := gw.Create(c, domain.NewUser{
				Username:    in.Username,
				Email:       in.Email,
				DisplayName: in.FullName,
				Phone:       in.Phone,
				Department:  in.Department,
				Location:    in.Location,
				Role:        domain.ParseRole(in.Role),
			})
			if err != nil {
				return adapter.DisplayUser{}, err
			}
			return adapter.ToDisplay(*u, time.Now()), nil
		},
	})

	// --- PUT /admin/v1/users/:id 更新（部分字段） ---
	type updateIn struct {
		Username   *string `json:"username"`
		Email      *string `json:"email"`
		FullName   *string `json:"fullName"`
		Phone      *string `json:"phone"`
		Department *string `json:"department"`
		Location   *string `json:"location"`
		Role       *string `json:"role"`
		Status     *string `json:"status"`
	}
	httpez.RegisterAction[updateIn, adapter.DisplayUser](ez, gw, httpez.Action[updateIn, adapter.DisplayUser]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, gw *gateway.Gateway, in *updateIn) (adapter.DisplayUser, error) {
			p := domain.UserPatch{
				Username:    in.Username,
				Email:       in.Email,
				DisplayName: in.FullName,
				Phone:       in.Phone,
				Department:  in.Department,
				Location:    in.Location,
			}
			// 更新场景角色/状态按严格枚举校验，不做默认值回落
			if in.Role != nil {
				r := domain.Role(strings.ToLower(strings.TrimSpace(*in.Role)))
				p.Role = &r
			}
			if in.Status != nil {
				s := domain.Status(strings.ToLower(strings.TrimSpace(*in.Status)))
				p.Status = &s
			}
			u, err := gw.Update(c, c.Param("id"), p)
			if err != nil {
				return adapter.DisplayUser{}, err
			}
			return adapter.ToDisplay(*u, time.Now()), nil
		},
	})

	// --- DELETE /admin/v1/users/:id 软删 ---
	httpez.RegisterAction[struct{}, adapter.DisplayUser](ez, gw, httpez.Action[struct{}, adapter.DisplayUser]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, gw *gateway.Gateway, _ *struct{}) (adapter.DisplayUser, error) {
			u, err := gw.SoftDelete(c, c.Param("id"))
			if err != nil {
				return adapter.DisplayUser{}, err
			}
			return adapter.ToDisplay(*u, time.Now()), nil
		},
	})

	// --- POST /admin/v1/users/:id/restore 恢复 ---
	httpez.RegisterAction[struct{}, adapter.DisplayUser](ez, gw, httpez.Action[struct{}, adapter.DisplayUser]{
		Method: http.MethodPost,
		Path:   "/users/:id/restore",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, gw *gateway.Gateway, _ *struct{}) (adapter.DisplayUser, error) {
			u, err := gw.Restore(c, c.Param("id"))
			if err != nil {
				return adapter.DisplayUser{}, err
			}
			return adapter.ToDisplay(*u, time.Now()), nil
		},
	})

	// --- POST /admin/v1/users/bulk-delete 批量软删（非事务，返回成败计数） ---
	type bulkIn struct {
		IDs []string `json:"ids" binding:"required,min=1"`
	}
	httpez.RegisterAction[bulkIn, *controller.BulkResult](ez, gw, httpez.Action[bulkIn, *controller.BulkResult]{
		Method: http.MethodPost,
		Path:   "/users/bulk-delete",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, gw *gateway.Gateway, in *bulkIn) (*controller.BulkResult, error) {
			return newCtrl(query.Descriptor{Page: 1, PageSize: 20}).BulkDelete(c, in.IDs), nil
		},
	})

	// --- GET /admin/v1/users/export 导出当前筛选结果（CSV 下载，非统一包裹） ---
	admin.GET("/users/export", func(c *gin.Context) {
		var d query.Descriptor
		if err := c.ShouldBindQuery(&d); err != nil {
			c.JSON(http.StatusOK, resp.FailMsg(string(domain.KindValidation), err.Error()))
			return
		}
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="users.csv"`)
		if err := newCtrl(d).ExportCSV(c, c.Writer); err != nil {
			if !c.Writer.Written() {
				c.JSON(http.StatusOK, resp.Fail(err))
				return
			}
			l.Error("csv export aborted mid-stream", zap.Error(err))
		}
	})

	// --- POST /admin/v1/users/import CSV 导入（multipart，字段名 file） ---
	httpez.POSTFILES(ez, "/users/import", "file", func(c *gin.Context, files []*multipart.FileHeader) (any, error) {
		f, err := files[0].Open()
		if err != nil {
			return nil, domain.Validation("file", "cannot open uploaded file")
		}
		defer f.Close()
		var res *csvio.ImportResult
		res, err = newCtrl(query.Descriptor{Page: 1, PageSize: 20}).ImportCSV(c, f)
		if err != nil {
			return nil, err
		}
		return res, nil
	})
}
