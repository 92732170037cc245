package request

// MentorDecisionRequest 导师批准/拒绝会话请求
// 使用位置:
//   - internal/handler/learning_session_handler.go: LearningSessionHandler.Approve, LearningSessionHandler.Reject
//   - internal/service/booking/service.go: Approve, Reject
type MentorDecisionRequest struct {
	MentorResponse string `json:"mentor_response" binding:"max=2000"`
}
