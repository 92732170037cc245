// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"context"
	"time"

	"skillswap_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// ProfileRepository 用户档案数据访问接口
// 外部身份目录在本服务内的落地，信誉字段只由信誉聚合器写入
type ProfileRepository interface {
	// FindByUuid 根据 UUID 查找档案
	FindByUuid(ctx context.Context, uuid string) (*model.UserProfile, error)
	// FindByUuidForUpdate 加行锁查找档案，只能在事务内使用
	FindByUuidForUpdate(ctx context.Context, uuid string) (*model.UserProfile, error)
	// FindAllUuids 列出全部档案 UUID（对账任务使用）
	FindAllUuids(ctx context.Context) ([]string, error)
	// Create 创建档案
	Create(ctx context.Context, profile *model.UserProfile) error
	// UpdateReputation 写入平均分与评价数
	UpdateReputation(ctx context.Context, uuid string, averageRating float64, reviewCount int) error
}

// SkillRepository 技能目录数据访问接口
type SkillRepository interface {
	// FindByUuid 根据 UUID 查找技能
	FindByUuid(ctx context.Context, uuid string) (*model.Skill, error)
	// Create 创建技能
	Create(ctx context.Context, skill *model.Skill) error
}

// LearningSessionRepository 学习会话数据访问接口
type LearningSessionRepository interface {
	// FindByUuid 根据 UUID 查找会话
	FindByUuid(ctx context.Context, uuid string) (*model.LearningSession, error)
	// FindByUuidForUpdate 加行锁查找会话，只能在事务内使用
	FindByUuidForUpdate(ctx context.Context, uuid string) (*model.LearningSession, error)
	// FindByParticipant 按参与角色查找会话，按创建时间倒序
	// role: "learner" / "mentor" / ""（两者皆可）
	FindByParticipant(ctx context.Context, userId, role string) ([]model.LearningSession, error)
	// FindByStatusScheduledBetween 查找指定状态且预约时间落在 [from, to] 的会话
	FindByStatusScheduledBetween(ctx context.Context, status string, from, to time.Time) ([]model.LearningSession, error)
	// Create 创建会话
	Create(ctx context.Context, session *model.LearningSession) error
	// Save 保存会话的可变字段
	Save(ctx context.Context, session *model.LearningSession) error
}

// SessionMessageRepository 会话消息数据访问接口
type SessionMessageRepository interface {
	// FindBySessionId 查找会话的全部消息，按创建时间正序
	FindBySessionId(ctx context.Context, sessionId string) ([]model.SessionMessage, error)
	// Create 追加消息
	Create(ctx context.Context, message *model.SessionMessage) error
}

// ReviewRepository 评价数据访问接口
type ReviewRepository interface {
	// FindByUuid 根据 UUID 查找评价
	FindByUuid(ctx context.Context, uuid string) (*model.Review, error)
	// ExistsByTriple 判断 (会话, 评价人, 被评价人) 是否已有评价
	ExistsByTriple(ctx context.Context, sessionId, reviewerId, reviewedId string) (bool, error)
	// FindByReviewedId 查找用户收到的评价，按创建时间倒序
	FindByReviewedId(ctx context.Context, reviewedId string) ([]model.Review, error)
	// FindByParticipant 查找用户给出或收到的评价，按创建时间倒序
	FindByParticipant(ctx context.Context, userId string) ([]model.Review, error)
	// SummaryByReviewedId 统计用户收到评价的分数总和与数量
	SummaryByReviewedId(ctx context.Context, reviewedId string) (RatingSummary, error)
	// Create 创建评价，违反联合唯一约束时返回 CodeConflict
	Create(ctx context.Context, review *model.Review) error
	// Save 保存评价的评分和内容
	Save(ctx context.Context, review *model.Review) error
	// Delete 物理删除评价
	Delete(ctx context.Context, review *model.Review) error
}

// ==================== 复合结构 ====================

// RatingSummary 评分统计
type RatingSummary struct {
	Sum   int64 `gorm:"column:total_rating"`
	Count int64 `gorm:"column:review_count"`
}

// Average 平均分，无评价时为 0
func (s RatingSummary) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Sum) / float64(s.Count)
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db      *gorm.DB                  // GORM 数据库实例
	Profile ProfileRepository         // 用户档案 Repository
	Skill   SkillRepository           // 技能 Repository
	Session LearningSessionRepository // 学习会话 Repository
	Message SessionMessageRepository  // 会话消息 Repository
	Review  ReviewRepository          // 评价 Repository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:      db,
		Profile: NewProfileRepository(db),
		Skill:   NewSkillRepository(db),
		Session: NewLearningSessionRepository(db),
		Message: NewSessionMessageRepository(db),
		Review:  NewReviewRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// fn 内只能使用 txRepos，否则会脱离事务
func (r *Repositories) Transaction(ctx context.Context, fn func(txRepos *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// AutoMigrate 自动迁移所有表结构
// 不会删除已有字段或数据
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.UserProfile{},     // 用户档案表
		&model.Skill{},           // 技能表
		&model.LearningSession{}, // 学习会话表
		&model.SessionMessage{},  // 会话消息表
		&model.Review{},          // 评价表
	)
}
