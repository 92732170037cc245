// Package router 提供 HTTP 路由注册
// 本文件定义评价与信誉相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterReviewRoutes 注册评价与信誉相关路由（需要认证）
func (rt *Router) RegisterReviewRoutes(rg *gin.RouterGroup) {
	reviewGroup := rg.Group("/reviews")
	{
		reviewGroup.POST("", rt.handlers.Review.Create)                  // 创建评价
		reviewGroup.GET("", rt.handlers.Review.ListMine)                 // 我给出或收到的评价
		reviewGroup.PATCH("/:reviewId", rt.handlers.Review.Update)       // 修改评价
		reviewGroup.DELETE("/:reviewId", rt.handlers.Review.Delete)      // 删除评价
		reviewGroup.POST("/reconcile", rt.handlers.Review.ReconcileMine) // 重算自己的信誉
	}

	userGroup := rg.Group("/users")
	{
		userGroup.GET("/:userId/reviews", rt.handlers.Review.ListForUser)      // 用户收到的评价
		userGroup.GET("/:userId/reputation", rt.handlers.Review.GetReputation) // 用户信誉
	}
}
