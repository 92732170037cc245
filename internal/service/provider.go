// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"skillswap_server/internal/dao/mysql/repository"
	myredis "skillswap_server/internal/dao/redis"
	"skillswap_server/internal/infrastructure/mq"
	"skillswap_server/internal/service/booking"
	"skillswap_server/internal/service/reputation"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层和定时任务通过它访问业务逻辑
type Services struct {
	Session LearningSessionService // 学习会话 Service
	Review  ReviewService          // 评价 Service
}

// Deps Service 层的外部依赖
type Deps struct {
	Repos       *repository.Repositories
	Cache       myredis.AsyncCacheService
	Notifier    mq.Notifier
	Broadcaster booking.Broadcaster // 可为 nil
}

// NewServices 创建并注入所有 Service 实例
func NewServices(deps Deps) *Services {
	return &Services{
		Session: booking.NewBookingService(deps.Repos, deps.Notifier, deps.Broadcaster),
		Review:  reputation.NewReputationService(deps.Repos, deps.Cache),
	}
}
