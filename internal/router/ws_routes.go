// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 注册 WebSocket 相关路由（需要认证）
func (rt *Router) RegisterWebSocketRoutes(rg *gin.RouterGroup) {
	// 订阅会话实时消息
	// 请求示例: ws://host:port/ws/session?sessionId=L2410161234567&token=xxx
	rg.GET("/ws/session", rt.handlers.Ws.Connect)
}
