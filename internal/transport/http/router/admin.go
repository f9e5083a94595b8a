package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-user-console/internal/core/auth"
	"go-user-console/internal/gateway"
	mdw "go-user-console/internal/transport/http/middleware"
)

// NewAdminEngine 管理端引擎。jwter 为 nil 时跳过鉴权（仅本地 mock 开发）。
func NewAdminEngine(l *zap.Logger, gw *gateway.Gateway, jwter *auth.JWTer) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		// 上限要盖过后端 30s 调用超时，否则网关还没分类完请求就被掐了
		mdw.Timeout(60*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": 1, "backend": gw.Mode()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin/v1")
	if jwter != nil {
		admin.Use(mdw.AuthJWT(jwter, "admin"))
	} else {
		l.Warn("admin api running WITHOUT auth (no jwt secret configured)")
	}

	// 自动发现的扩展模块（如有）
	MountAllAdmin(admin)

	// 用户管理
	MountUserActions(admin, gw, l)

	return r
}
