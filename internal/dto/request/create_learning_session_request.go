package request

import "time"

// CreateLearningSessionRequest 学员预约学习会话请求
// 使用位置:
//   - internal/handler/learning_session_handler.go: LearningSessionHandler.Create
//   - internal/service/booking/service.go: Create
type CreateLearningSessionRequest struct {
	SkillId        string    `json:"skill_id" binding:"required"`
	ScheduledAt    time.Time `json:"scheduled_at"` // 缺失时由 service 返回参数错误
	LearnerMessage string    `json:"learner_message" binding:"max=2000"`
}
