package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-user-console/internal/domain"
	resp "go-user-console/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小（CSV 导入也走这条线）
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Err() != nil && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusOK, resp.FailMsg(string(domain.KindValidation), "request body too large"))
		}
	}
}
