// Package model 定义数据库实体模型
// 本文件定义用户档案模型，承载导师/学员身份及其信誉聚合值
package model

import (
	"gorm.io/gorm"
)

// UserProfile 用户档案模型
// 对应数据库 user_profile 表
// 身份本身由外部身份服务管理，这里只保存业务需要的档案和信誉缓存
type UserProfile struct {
	gorm.Model // 内嵌 GORM 模型，包含 ID、CreatedAt、UpdatedAt、DeletedAt

	// Uuid 用户唯一标识，与身份服务签发的 user_id 一致
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:用户唯一id"`

	// Nickname 用户昵称
	Nickname string `gorm:"column:nickname;type:varchar(20);not null;comment:昵称"`

	// UserType 用户类型 MENTOR / LEARNER
	// 参见 pkg/enum/user_type_enum
	UserType string `gorm:"column:user_type;type:varchar(10);not null;default:LEARNER;comment:用户类型"`

	// Bio 个人简介
	Bio string `gorm:"column:bio;type:TEXT;comment:个人简介"`

	// AverageRating 收到评价的平均分
	// 由 review 表派生的冗余字段，只允许信誉聚合器写入
	AverageRating float64 `gorm:"column:average_rating;not null;default:0;comment:平均评分"`

	// ReviewCount 收到评价的数量，同上
	ReviewCount int `gorm:"column:review_count;not null;default:0;comment:评价数量"`
}

// TableName 指定表名
func (UserProfile) TableName() string {
	return "user_profile"
}
