// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"net/http"

	"skillswap_server/internal/handler"
	"skillswap_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 持有 Handler 聚合对象
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	// 健康检查（无需认证）
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// 以下接口都需要认证
	authed := r.Group("/api/v1")
	authed.Use(middleware.JWTAuth())
	{
		rt.RegisterSessionRoutes(authed) // 学习会话路由
		rt.RegisterReviewRoutes(authed)  // 评价与信誉路由
	}

	wsGroup := r.Group("")
	wsGroup.Use(middleware.JWTAuth())
	rt.RegisterWebSocketRoutes(wsGroup) // WebSocket 路由
}
