package request

import "time"

// RescheduleSessionRequest 改期请求
// 使用位置:
//   - internal/handler/learning_session_handler.go: LearningSessionHandler.Reschedule
//   - internal/service/booking/service.go: Reschedule
type RescheduleSessionRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}
