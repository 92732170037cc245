// Package model 定义数据库实体模型
// 本文件定义学习会话模型，即一次预约的辅导
package model

import (
	"time"
)

// LearningSession 学习会话模型
// 对应数据库 learning_session 表
// 会话不做删除，只通过状态流转结束生命周期
type LearningSession struct {
	ID uint `gorm:"primarykey"`

	// Uuid 会话唯一标识
	// 格式：L + 时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:会话uuid"`

	// SkillId 预约的技能 UUID
	SkillId string `gorm:"column:skill_id;index;type:char(20);not null;comment:技能uuid"`

	// LearnerId 学员 UUID
	LearnerId string `gorm:"column:learner_id;index;type:char(20);not null;comment:学员uuid"`

	// MentorId 导师 UUID
	// 创建时从技能拷贝，学员不能自行指定
	MentorId string `gorm:"column:mentor_id;index;type:char(20);not null;comment:导师uuid"`

	// ScheduledAt 预约时间
	ScheduledAt time.Time `gorm:"column:scheduled_at;index;not null;comment:预约时间"`

	// Status 会话状态
	// 参见 pkg/enum/session_status_enum
	Status string `gorm:"column:status;index;type:varchar(10);not null;default:PENDING;comment:状态"`

	// LearnerMessage 学员留言
	LearnerMessage string `gorm:"column:learner_message;type:TEXT;comment:学员留言"`

	// MentorResponse 导师回复（批准/拒绝时填写）
	MentorResponse string `gorm:"column:mentor_response;type:TEXT;comment:导师回复"`

	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName 指定表名
func (LearningSession) TableName() string {
	return "learning_session"
}

// IsParticipant 判断用户是否为会话参与者（学员或导师）
func (s *LearningSession) IsParticipant(userId string) bool {
	return userId != "" && (userId == s.LearnerId || userId == s.MentorId)
}

// Counterpart 返回相对于 userId 的另一方参与者
// userId 不是参与者时返回空字符串
func (s *LearningSession) Counterpart(userId string) string {
	switch userId {
	case s.LearnerId:
		return s.MentorId
	case s.MentorId:
		return s.LearnerId
	}
	return ""
}
