// Package model 定义数据库实体模型
// 本文件定义技能模型（目录数据，会话内只读）
package model

import (
	"gorm.io/gorm"
)

// Skill 技能模型
// 对应数据库 skill 表
type Skill struct {
	gorm.Model

	// Uuid 技能唯一标识
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:技能uuid"`

	// MentorId 提供该技能的导师 UUID
	MentorId string `gorm:"column:mentor_id;index;type:char(20);not null;comment:导师uuid"`

	// Title 技能标题
	Title string `gorm:"column:title;type:varchar(200);not null;comment:标题"`

	Description string `gorm:"column:description;type:TEXT;comment:描述"`

	// Level BEGINNER / INTERMEDIATE / ADVANCED
	Level string `gorm:"column:level;type:varchar(15);default:BEGINNER;comment:难度"`

	// DurationMinutes 典型单次会话时长（分钟）
	DurationMinutes int `gorm:"column:duration_minutes;not null;comment:时长"`
}

// TableName 指定表名
func (Skill) TableName() string {
	return "skill"
}
