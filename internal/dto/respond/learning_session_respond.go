package respond

import "time"

// LearningSessionRespond 学习会话详情
// 使用位置:
//   - internal/service/booking/service.go: Create, Approve, Reject, Reschedule, Complete, Cancel, Get, List
type LearningSessionRespond struct {
	SessionId      string    `json:"session_id"`
	SkillId        string    `json:"skill_id"`
	LearnerId      string    `json:"learner_id"`
	MentorId       string    `json:"mentor_id"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Status         string    `json:"status"`
	LearnerMessage string    `json:"learner_message"`
	MentorResponse string    `json:"mentor_response"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
