// Package router 提供 HTTP 路由注册
// 本文件定义学习会话相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterSessionRoutes 注册学习会话相关路由（需要认证）
// 包括预约、审批、改期、完成、取消以及会话内消息
func (rt *Router) RegisterSessionRoutes(rg *gin.RouterGroup) {
	sessionGroup := rg.Group("/sessions")
	{
		sessionGroup.POST("", rt.handlers.Session.Create)                           // 预约
		sessionGroup.GET("", rt.handlers.Session.List)                              // 我参与的会话，?role=learner|mentor
		sessionGroup.GET("/:sessionId", rt.handlers.Session.Get)                    // 会话详情
		sessionGroup.POST("/:sessionId/approve", rt.handlers.Session.Approve)       // 导师批准
		sessionGroup.POST("/:sessionId/reject", rt.handlers.Session.Reject)         // 导师拒绝
		sessionGroup.POST("/:sessionId/reschedule", rt.handlers.Session.Reschedule) // 改期
		sessionGroup.POST("/:sessionId/complete", rt.handlers.Session.Complete)     // 完成
		sessionGroup.POST("/:sessionId/cancel", rt.handlers.Session.Cancel)         // 取消
		sessionGroup.POST("/:sessionId/messages", rt.handlers.Session.PostMessage)  // 发送消息
		sessionGroup.GET("/:sessionId/messages", rt.handlers.Session.ListMessages)  // 消息列表
	}
}
