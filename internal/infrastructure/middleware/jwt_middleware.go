// Package middleware 提供 gin 中间件
package middleware

import (
	"net/http"
	"strings"

	"skillswap_server/pkg/errorx"
	"skillswap_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// ContextUserKey 当前用户 ID 在 gin.Context 中的 key
const ContextUserKey = "user_id"

// JWTAuth JWT 认证中间件
// 验证 Access Token 并将用户 ID 存入上下文
// 浏览器 WebSocket 无法自定义 Header，允许通过 ?token= 传递
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从 Header 或 Query 获取 Token
		tokenString, ok := extractToken(c)
		if !ok {
			abortUnauthorized(c, "请先登录")
			return
		}

		// 2. 验证 Token
		claims, err := jwt.ParseToken(tokenString)
		if err != nil {
			abortUnauthorized(c, "Token 已过期或无效，请重新登录")
			return
		}

		// 3. 验证是否为 Access Token
		if claims.Subject != "access_token" {
			abortUnauthorized(c, "请使用 Access Token 访问此接口")
			return
		}

		c.Set(ContextUserKey, claims.UserID)
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		token := c.Query("token")
		return token, token != ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code": errorx.CodeUnauthorized,
		"msg":  msg,
	})
}
