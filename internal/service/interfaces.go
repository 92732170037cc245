// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层和定时任务调用
// 所有方法都显式接收操作人 ID，不从请求上下文隐式读取身份
package service

import (
	"context"

	"skillswap_server/internal/dto/request"
	"skillswap_server/internal/dto/respond"
)

// LearningSessionService 学习会话业务接口
// 处理预约、审批、改期、完成以及会话内消息
type LearningSessionService interface {
	// Create 学员预约技能
	Create(ctx context.Context, learnerId string, req request.CreateLearningSessionRequest) (*respond.LearningSessionRespond, error)
	// Approve 导师批准
	Approve(ctx context.Context, actorId, sessionId string, req request.MentorDecisionRequest) (*respond.LearningSessionRespond, error)
	// Reject 导师拒绝
	Reject(ctx context.Context, actorId, sessionId string, req request.MentorDecisionRequest) (*respond.LearningSessionRespond, error)
	// Reschedule 参与者改期
	Reschedule(ctx context.Context, actorId, sessionId string, req request.RescheduleSessionRequest) (*respond.LearningSessionRespond, error)
	// Complete 参与者标记完成
	Complete(ctx context.Context, actorId, sessionId string) (*respond.LearningSessionRespond, error)
	// Cancel 参与者取消
	Cancel(ctx context.Context, actorId, sessionId string) (*respond.LearningSessionRespond, error)
	// Get 参与者查看详情
	Get(ctx context.Context, actorId, sessionId string) (*respond.LearningSessionRespond, error)
	// List 按角色列出会话
	List(ctx context.Context, actorId, role string) ([]respond.LearningSessionRespond, error)
	// PostMessage 会话内发送消息
	PostMessage(ctx context.Context, actorId, sessionId string, req request.PostSessionMessageRequest) (*respond.SessionMessageRespond, error)
	// ListMessages 会话消息列表
	ListMessages(ctx context.Context, actorId, sessionId string) ([]respond.SessionMessageRespond, error)
}

// ReviewService 评价与信誉业务接口
type ReviewService interface {
	// CreateReview 创建评价并重算被评价人信誉
	CreateReview(ctx context.Context, reviewerId string, req request.CreateReviewRequest) (*respond.ReviewRespond, error)
	// UpdateReview 修改自己的评价
	UpdateReview(ctx context.Context, actorId, reviewId string, req request.UpdateReviewRequest) (*respond.ReviewRespond, error)
	// DeleteReview 删除自己的评价
	DeleteReview(ctx context.Context, actorId, reviewId string) error
	// ListForUser 用户收到的评价
	ListForUser(ctx context.Context, userId string) ([]respond.ReviewRespond, error)
	// ListForActor 用户给出或收到的评价
	ListForActor(ctx context.Context, actorId string) ([]respond.ReviewRespond, error)
	// GetReputation 用户信誉聚合值
	GetReputation(ctx context.Context, userId string) (*respond.ReputationRespond, error)
	// Reconcile 全量重算单个用户信誉
	Reconcile(ctx context.Context, userId string) (*respond.ReputationRespond, error)
	// ReconcileAll 全量重算所有用户信誉
	ReconcileAll(ctx context.Context) (int, error)
}
