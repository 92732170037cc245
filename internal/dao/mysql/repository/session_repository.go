// Package repository 提供数据访问层的具体实现
// 本文件实现 LearningSessionRepository 接口，处理学习会话相关的数据库操作
package repository

import (
	"context"
	"time"

	"skillswap_server/internal/model"

	"gorm.io/gorm"
)

// learningSessionRepository LearningSessionRepository 接口的实现
type learningSessionRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewLearningSessionRepository 创建 LearningSessionRepository 实例
func NewLearningSessionRepository(db *gorm.DB) LearningSessionRepository {
	return &learningSessionRepository{db: db}
}

// FindByUuid 根据 UUID 查找会话
func (r *learningSessionRepository) FindByUuid(ctx context.Context, uuid string) (*model.LearningSession, error) {
	var session model.LearningSession
	if err := r.db.WithContext(ctx).First(&session, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询学习会话 uuid=%s", uuid)
	}
	return &session, nil
}

// FindByUuidForUpdate 根据 UUID 加锁查找会话
// 状态的检查与写入必须在同一事务中串行化
func (r *learningSessionRepository) FindByUuidForUpdate(ctx context.Context, uuid string) (*model.LearningSession, error) {
	var session model.LearningSession
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&session, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "加锁查询学习会话 uuid=%s", uuid)
	}
	return &session, nil
}

// FindByParticipant 按参与角色查找会话
func (r *learningSessionRepository) FindByParticipant(ctx context.Context, userId, role string) ([]model.LearningSession, error) {
	query := r.db.WithContext(ctx).Model(&model.LearningSession{})
	switch role {
	case "learner":
		query = query.Where("learner_id = ?", userId)
	case "mentor":
		query = query.Where("mentor_id = ?", userId)
	default:
		query = query.Where("learner_id = ? OR mentor_id = ?", userId, userId)
	}

	var sessions []model.LearningSession
	if err := query.Order("created_at DESC").Order("id DESC").Find(&sessions).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询学习会话列表 user=%s role=%s", userId, role)
	}
	return sessions, nil
}

// FindByStatusScheduledBetween 查找预约时间落在窗口内的会话（提醒任务使用）
func (r *learningSessionRepository) FindByStatusScheduledBetween(ctx context.Context, status string, from, to time.Time) ([]model.LearningSession, error) {
	var sessions []model.LearningSession
	if err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at >= ? AND scheduled_at <= ?", status, from, to).
		Order("scheduled_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询待提醒会话 status=%s", status)
	}
	return sessions, nil
}

// Create 创建会话
func (r *learningSessionRepository) Create(ctx context.Context, session *model.LearningSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return wrapDBError(err, "创建学习会话")
	}
	return nil
}

// Save 保存会话的可变字段
// 只更新状态机涉及的列，技能和参与者不可变
func (r *learningSessionRepository) Save(ctx context.Context, session *model.LearningSession) error {
	res := r.db.WithContext(ctx).Model(session).
		Select("status", "scheduled_at", "mentor_response", "updated_at").
		Updates(session)
	if res.Error != nil {
		return wrapDBErrorf(res.Error, "更新学习会话 uuid=%s", session.Uuid)
	}
	return nil
}
