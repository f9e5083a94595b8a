package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"go-user-console/internal/domain"
	resp "go-user-console/internal/transport/http/response"
)

// ConcurrencyLimit 限制同时在处理的请求数（保护下游后端）
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if err := sem.Acquire(c, 1); err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.FailMsg(string(domain.KindNetwork), "server busy"))
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
