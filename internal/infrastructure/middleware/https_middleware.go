package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// TlsHandler 将 HTTP 请求重定向到 HTTPS，并附加安全响应头
func TlsHandler(host string, port int, isDevelopment bool) gin.HandlerFunc {
	// 只创建一次
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:        true,
		SSLHost:            host + ":" + strconv.Itoa(port),
		FrameDeny:          true,
		ContentTypeNosniff: true,
		IsDevelopment:      isDevelopment,
	})

	return func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			// 不能用 Fatal，记录后终止当前请求
			zap.L().Warn("TLS redirection failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.Abort()
			return
		}

		// 已重定向时 secure 写入了 Location，不再进入 handler
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
			return
		}
		c.Next()
	}
}
