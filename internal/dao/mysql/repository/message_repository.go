package repository

import (
	"context"

	"skillswap_server/internal/model"

	"gorm.io/gorm"
)

type sessionMessageRepository struct {
	db *gorm.DB
}

// NewSessionMessageRepository 创建会话消息 Repository
func NewSessionMessageRepository(db *gorm.DB) SessionMessageRepository {
	return &sessionMessageRepository{db: db}
}

// FindBySessionId 按会话ID查找消息
func (r *sessionMessageRepository) FindBySessionId(ctx context.Context, sessionId string) ([]model.SessionMessage, error) {
	var messages []model.SessionMessage
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionId).
		Order("created_at ASC").Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话消息 session_id=%s", sessionId)
	}
	return messages, nil
}

// Create 创建消息
func (r *sessionMessageRepository) Create(ctx context.Context, message *model.SessionMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return wrapDBError(err, "创建会话消息")
	}
	return nil
}
