// Package model 定义数据库实体模型
// 本文件定义会话内聊天消息模型
package model

import (
	"time"
)

// SessionMessage 会话消息模型
// 对应数据库 session_message 表
// 只追加，不修改
type SessionMessage struct {
	ID uint `gorm:"primarykey"`

	// Uuid 消息雪花 ID
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// SessionId 所属学习会话 UUID
	SessionId string `gorm:"column:session_id;index;type:char(20);not null;comment:会话uuid"`

	// SenderId 发送者 UUID，必须是会话参与者
	SenderId string `gorm:"column:sender_id;type:char(20);not null;comment:发送者uuid"`

	// Content 消息内容
	Content string `gorm:"column:content;type:TEXT;not null;comment:消息内容"`

	CreatedAt time.Time `gorm:"column:created_at;index"`
}

// TableName 指定表名
func (SessionMessage) TableName() string {
	return "session_message"
}
