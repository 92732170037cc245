// Package model 定义数据库实体模型
// 本文件定义会话评价模型
package model

import (
	"time"
)

// Review 评价模型
// 对应数据库 review 表
// (session_id, reviewer_id, reviewed_id) 联合唯一，由数据库约束保证
type Review struct {
	ID uint `gorm:"primarykey"`

	// Uuid 评价唯一标识
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(36);not null;comment:评价uuid"`

	// SessionId 被评价的学习会话 UUID
	SessionId string `gorm:"column:session_id;uniqueIndex:idx_review_triple,priority:1;type:char(20);not null;comment:会话uuid"`

	// ReviewerId 评价人 UUID
	ReviewerId string `gorm:"column:reviewer_id;uniqueIndex:idx_review_triple,priority:2;index;type:char(20);not null;comment:评价人uuid"`

	// ReviewedId 被评价人 UUID
	ReviewedId string `gorm:"column:reviewed_id;uniqueIndex:idx_review_triple,priority:3;index;type:char(20);not null;comment:被评价人uuid"`

	// Rating 评分 1-5
	Rating int `gorm:"column:rating;not null;comment:评分"`

	Comment string `gorm:"column:comment;type:TEXT;comment:评价内容"`

	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName 指定表名
func (Review) TableName() string {
	return "review"
}
